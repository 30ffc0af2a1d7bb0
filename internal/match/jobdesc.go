package match

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a job description is requested
// for an unknown category key. Caller error, fatal for the analysis.
var ErrInvalidCategory = errors.New("invalid job category")

// JobCategory is a fixed job-description template used when a caller
// scores resumes without supplying free text.
type JobCategory struct {
	Title        string
	Description  string
	Requirements []string
	Skills       []string
}

// jobCategories are the built-in templates. Keys are the category
// identifiers accepted by BuildJobDescription.
var jobCategories = map[string]JobCategory{
	"technical": {
		Title:       "Technical Roles",
		Description: "We are seeking candidates for various technical positions.",
		Requirements: []string{
			"Relevant technical education or certifications",
			"Experience with industry-standard tools and technologies",
			"Problem-solving and analytical abilities",
			"Understanding of technical documentation",
			"Ability to work in a team environment",
			"Continuous learning mindset",
		},
		Skills: []string{
			"Technical proficiency",
			"Problem-solving",
			"Team collaboration",
			"Communication",
			"Adaptability",
			"Attention to detail",
		},
	},
	"business": {
		Title:       "Business Roles",
		Description: "We are looking for professionals for various business positions.",
		Requirements: []string{
			"Business-related education or experience",
			"Understanding of business processes",
			"Analytical and strategic thinking",
			"Project management skills",
			"Communication and presentation abilities",
			"Team leadership experience",
		},
		Skills: []string{
			"Strategic thinking",
			"Communication",
			"Leadership",
			"Project management",
			"Analytical skills",
			"Problem-solving",
		},
	},
	"creative": {
		Title:       "Creative Roles",
		Description: "We are seeking creative professionals for various positions.",
		Requirements: []string{
			"Creative education or portfolio",
			"Experience with creative tools and software",
			"Strong visual and conceptual skills",
			"Understanding of design principles",
			"Ability to work under deadlines",
			"Collaboration and feedback incorporation",
		},
		Skills: []string{
			"Creativity",
			"Visual communication",
			"Technical proficiency",
			"Time management",
			"Collaboration",
			"Adaptability",
		},
	},
	"administrative": {
		Title:       "Administrative Roles",
		Description: "We are looking for administrative professionals.",
		Requirements: []string{
			"Organizational and time management skills",
			"Proficiency in office software",
			"Communication and interpersonal abilities",
			"Attention to detail",
			"Ability to handle multiple tasks",
			"Problem-solving skills",
		},
		Skills: []string{
			"Organization",
			"Communication",
			"Time management",
			"Problem-solving",
			"Technical proficiency",
			"Teamwork",
		},
	},
}

// CategoryKeys returns the known category identifiers, for listing and
// for the sweeper's analyze-against-everything pass.
func CategoryKeys() []string {
	return []string{"technical", "business", "creative", "administrative"}
}

// BuildJobDescription synthesizes a scoring-ready job description from
// a category template, appending any caller-supplied extra requirements.
func BuildJobDescription(category string, extraRequirements []string) (string, error) {
	job, ok := jobCategories[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	reqs := append([]string{}, job.Requirements...)
	reqs = append(reqs, extraRequirements...)

	var b strings.Builder
	b.WriteString(job.Description)
	b.WriteString("\nThe ideal candidate should have:\n\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nKey Skills:\n")
	for _, s := range job.Skills {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	return b.String(), nil
}
