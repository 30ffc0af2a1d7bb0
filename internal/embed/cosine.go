// Package embed scores semantic similarity between texts using a
// sentence-embedding model served over an OpenAI-compatible API.
package embed

import "math"

// Cosine returns dot(a,b)/(‖a‖·‖b‖) in [-1,1]. Mismatched lengths or
// zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
