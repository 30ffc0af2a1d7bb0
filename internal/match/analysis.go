package match

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Best-effort contact extraction from raw resume text. These are
// heuristics over messy PDF output; each field is included in the
// analysis only when found.
var (
	nameRe  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\b\d{3}[\s.\-]?\d{3}[\s.\-]?\d{4}\b`)
)

// highlight markers select keywords worth calling out in the summary.
var highlightMarkers = []string{"skill", "experience", "technology"}

const maxHighlights = 5

// BuildAnalysis produces the human-readable analysis text for a scored
// resume. Downstream consumers must treat it as opaque presentation
// text, not structured data.
func BuildAnalysis(score float64, resumeText, jobDescription string, resumeKW, jobKW map[string]bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Match score: %.2f%%\n", score*100)

	if name := nameRe.FindString(resumeText); name != "" {
		fmt.Fprintf(&b, "Candidate: %s\n", name)
	}
	if email := emailRe.FindString(resumeText); email != "" {
		fmt.Fprintf(&b, "Email: %s\n", email)
	}
	if phone := phoneRe.FindString(resumeText); phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", phone)
	}

	if highlights := keywordHighlights(resumeKW); len(highlights) > 0 {
		fmt.Fprintf(&b, "Highlights: %s\n", strings.Join(highlights, ", "))
	}

	b.WriteString(banding(score))
	return b.String()
}

// keywordHighlights returns up to maxHighlights resume keywords that
// mention skills, experience or technology, sorted for stable output.
func keywordHighlights(resumeKW map[string]bool) []string {
	var hits []string
	for kw := range resumeKW {
		for _, m := range highlightMarkers {
			if strings.Contains(kw, m) {
				hits = append(hits, kw)
				break
			}
		}
	}
	sort.Strings(hits)
	if len(hits) > maxHighlights {
		hits = hits[:maxHighlights]
	}
	return hits
}

// banding maps the final score to qualitative match language.
func banding(score float64) string {
	switch {
	case score >= 0.8:
		return "This is an excellent match: the candidate's background aligns strongly with the role."
	case score >= 0.6:
		return "This is a good match: the candidate covers most of what the role asks for."
	case score >= 0.4:
		return "This is a moderate match: some relevant background, with notable gaps."
	default:
		return "This is a basic match: little direct overlap with the role requirements."
	}
}

// FormatPercent renders a score as a display percentage, e.g. "73.50%".
func FormatPercent(score float64) string {
	return fmt.Sprintf("%.2f%%", score*100)
}
