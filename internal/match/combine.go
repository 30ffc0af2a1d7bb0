package match

// Blend weights for the final score. The embedding similarity carries
// the semantic signal, keyword overlap the lexical one.
const (
	EmbeddingWeight = 0.6
	KeywordWeight   = 0.4
)

// FloorScore clamps a sub-score to [ScoreFloor, 1.0]. Applied to both
// the embedding and keyword sub-scores before blending so neither weak
// signal alone can force the final score toward zero.
func FloorScore(s float64) float64 {
	if s < ScoreFloor {
		return ScoreFloor
	}
	if s > 1 {
		return 1
	}
	return s
}

// Combine blends the embedding and keyword sub-scores into the final
// match score. Inputs are expected to be floored already; the output is
// not re-clamped beyond that.
func Combine(embedScore, keywordScore float64) float64 {
	return EmbeddingWeight*embedScore + KeywordWeight*keywordScore
}
