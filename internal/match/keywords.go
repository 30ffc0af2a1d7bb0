package match

import "strings"

// stopWords filters common English words that add noise to keyword
// matching: articles, prepositions and auxiliary verbs.
var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "has": true, "had": true, "will": true,
	"this": true, "that": true, "from": true, "our": true, "your": true,
	"their": true, "they": true, "them": true, "was": true, "were": true,
	"been": true, "being": true, "can": true, "could": true, "would": true,
	"should": true, "may": true, "might": true, "must": true, "shall": true,
	"not": true, "but": true, "all": true, "also": true, "about": true,
	"into": true, "onto": true, "over": true, "under": true, "than": true,
	"then": true, "when": true, "where": true, "which": true, "what": true,
	"who": true, "whom": true, "how": true, "why": true, "each": true,
	"such": true, "more": true, "most": true, "some": true, "any": true,
	"its": true, "his": true, "her": true, "him": true, "she": true,
	"out": true, "off": true, "per": true, "via": true, "these": true,
	"those": true, "there": true, "here": true, "does": true, "did": true,
	"doing": true, "done": true,
}

// suffixes stripped to produce morphological variants: "developing"
// also yields "develop", "managed" yields "manag", "skills" yields
// "skill". Crude stemming, but enough for substring overlap scoring.
var variantSuffixes = []string{"ing", "ed", "s"}

// ExtractKeywords tokenizes normalized text into a deduplicated keyword
// set. Tokens of length <= 2 and stop words are dropped; each surviving
// token contributes suffix-stripped variants as well. Output order is
// irrelevant; callers treat it as a set.
func ExtractKeywords(normalized string) map[string]bool {
	kw := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		tok = strings.Trim(tok, ".,;:!?()-/")
		if len(tok) <= 2 || stopWords[tok] {
			continue
		}
		kw[tok] = true
		for _, suf := range variantSuffixes {
			if v, ok := strings.CutSuffix(tok, suf); ok && len(v) > 2 && !stopWords[v] {
				kw[v] = true
			}
		}
	}
	return kw
}
