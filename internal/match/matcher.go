package match

import "strings"

// Category weighting for keyword overlap. Experience counts slightly
// more than skills, education slightly less.
const (
	weightSkill      = 1.0
	weightExperience = 1.2
	weightEducation  = 0.8

	// ScoreFloor is the minimum value of both sub-scores before
	// blending. Candidates are never scored as a total lexical
	// mismatch once keywords exist at all.
	ScoreFloor = 0.3

	// fuzzyThreshold is the minimum normalized edit-distance
	// similarity for two keywords to count as a fuzzy match.
	fuzzyThreshold = 0.7
)

// categoryMarkers partition job keywords into skill / experience /
// education buckets by substring membership. A keyword may land in
// several buckets; one matching none is excluded from weighted scoring.
var categoryMarkers = map[string][]string{
	"skill":      {"skill", "ability", "proficient", "expertise"},
	"experience": {"experience", "years", "worked", "developed"},
	"education":  {"education", "degree", "certification", "training"},
}

var categoryWeights = map[string]float64{
	"skill":      weightSkill,
	"experience": weightExperience,
	"education":  weightEducation,
}

// KeywordScore computes the weighted lexical overlap between resume and
// job keyword sets. Category-flavored job keywords (skill, experience,
// education) are matched fuzzily and weighted; remaining overlap counts
// at base weight so shared tech terms like "django" still move the
// score. The result is clamped to [ScoreFloor, 1.0].
func KeywordScore(resumeKW, jobKW map[string]bool) float64 {
	buckets := partitionJobKeywords(jobKW)

	var weighted float64
	matched := make(map[string]bool, len(resumeKW))
	for cat, keywords := range buckets {
		count := 0
		for rk := range resumeKW {
			if matchesAny(rk, keywords) {
				count++
				matched[rk] = true
			}
		}
		weighted += float64(count) * categoryWeights[cat]
	}

	// Direct overlap outside the category buckets, at base weight.
	for rk := range resumeKW {
		if !matched[rk] && jobKW[rk] {
			weighted += weightSkill
		}
	}

	sumWeights := weightSkill + weightExperience + weightEducation
	denom := float64(len(jobKW)) * sumWeights / 3
	if denom < 1 {
		denom = 1 // empty job keywords must not divide by zero
	}

	score := weighted / denom
	if score > 1 {
		score = 1
	}
	if score < ScoreFloor {
		score = ScoreFloor
	}
	return score
}

// partitionJobKeywords groups job keywords into overlapping category
// buckets based on marker substrings.
func partitionJobKeywords(jobKW map[string]bool) map[string][]string {
	buckets := make(map[string][]string, len(categoryMarkers))
	for kw := range jobKW {
		for cat, markers := range categoryMarkers {
			for _, m := range markers {
				if strings.Contains(kw, m) {
					buckets[cat] = append(buckets[cat], kw)
					break
				}
			}
		}
	}
	return buckets
}

// matchesAny reports whether keyword matches any category keyword,
// either by substring containment in either direction or by fuzzy
// edit-distance similarity.
func matchesAny(keyword string, categoryKWs []string) bool {
	for _, ck := range categoryKWs {
		if strings.Contains(keyword, ck) || strings.Contains(ck, keyword) {
			return true
		}
		if editSimilarity(keyword, ck) > fuzzyThreshold {
			return true
		}
	}
	return false
}

// editSimilarity returns (maxLen - levenshtein) / maxLen in [0,1].
// Inputs are already lowercase after Normalize.
func editSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-levenshtein(ra, rb)) / float64(maxLen)
}

// levenshtein computes edit distance with a two-row DP table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
