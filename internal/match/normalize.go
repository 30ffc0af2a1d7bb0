// Package match implements the resume-to-job matching pipeline:
// text normalization, keyword extraction, weighted keyword scoring,
// score blending and human-readable analysis generation.
package match

import (
	"strings"
	"unicode"
)

// allowedPunct is the punctuation kept by Normalize. Everything else
// outside letters and digits is stripped.
var allowedPunct = map[rune]bool{
	'.': true, ',': true, ';': true, ':': true, '!': true,
	'?': true, '(': true, ')': true, '-': true, '/': true,
}

// Normalize prepares raw text for tokenization: splits words glued
// together by PDF extraction (lower→Upper boundaries), lowercases,
// turns commas into spaces, strips unsafe punctuation and collapses
// whitespace. Pure and idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)

	var prev rune
	for _, r := range text {
		// "JohnSmith" → "John Smith": extraction artifact repair.
		if unicode.IsLower(prev) && unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		switch {
		case r == ',':
			b.WriteRune(' ')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case allowedPunct[r]:
			b.WriteRune(r)
		}
		prev = r
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
