// Package pipeline orchestrates resume analysis: extract text, score
// keywords and embeddings, blend, generate analysis and persist the
// result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careercrush/match/internal/embed"
	"github.com/careercrush/match/internal/extract"
	"github.com/careercrush/match/internal/match"
	"github.com/careercrush/match/internal/store"
)

// State tracks an analysis run through the pipeline.
type State string

const (
	StateCreated    State = "created"
	StateExtracting State = "extracting"
	StateScoring    State = "scoring"
	StatePersisted  State = "persisted"
	StateFailed     State = "failed"
)

// ErrTimeout means the analysis exceeded its deadline. Fatal for this
// attempt; re-analysis may be triggered later as a fresh run.
var ErrTimeout = errors.New("analysis timed out")

// Kind classifies a pipeline failure for logging and API mapping.
type Kind string

const (
	KindNone         Kind = ""
	KindFileNotFound Kind = "file_not_found"
	KindExtraction   Kind = "extraction"
	KindEmbedding    Kind = "embedding"
	KindValidation   Kind = "validation"
	KindTimeout      Kind = "timeout"
	KindInternal     Kind = "internal"
)

// Classify maps an analysis error to its failure kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, extract.ErrFileNotFound):
		return KindFileNotFound
	case errors.Is(err, extract.ErrExtraction):
		return KindExtraction
	case errors.Is(err, embed.ErrEmbedding):
		return KindEmbedding
	case errors.Is(err, match.ErrInvalidCategory):
		return KindValidation
	default:
		return KindInternal
	}
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetResume(ctx context.Context, id int) (*store.Resume, error)
	ReplaceScore(ctx context.Context, sc store.MatchScore) error
	UnanalyzedResumes(ctx context.Context, limit int) ([]store.Resume, error)
}

// Extractor turns a stored file reference into plain text.
type Extractor interface {
	Text(ref string) (string, error)
}

// Scorer computes semantic similarity between two texts.
type Scorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Orchestrator runs the analysis pipeline. Construct once with its
// collaborators injected; safe for concurrent use.
type Orchestrator struct {
	store     Store
	extractor Extractor
	scorer    Scorer
	runlog    *RunLog // nil disables run logging
	timeout   time.Duration
}

// New builds an Orchestrator. runlog may be nil; timeout <= 0 defaults
// to 60s per analysis.
func New(st Store, ex Extractor, sc Scorer, runlog *RunLog, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Orchestrator{store: st, extractor: ex, scorer: sc, runlog: runlog, timeout: timeout}
}

// Analyze scores one resume against a job description and persists the
// result, replacing any prior score. A failed analysis never touches
// the resume row or an existing score; callers treat a scoreless resume
// as a valid "not yet analyzed" state.
func (o *Orchestrator) Analyze(ctx context.Context, resumeID int, jobDescription string) (*store.MatchScore, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	state := StateCreated

	result, err := o.run(ctx, &state, resumeID, jobDescription)
	if err != nil {
		state = StateFailed
		if ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
	}

	kind := Classify(err)
	o.record(resumeID, state, kind, time.Since(start))

	if err != nil {
		metricsFailure(kind)
		slog.Warn("analysis failed",
			slog.Int("resume_id", resumeID),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
		return nil, err
	}

	metricsPersisted()
	slog.Info("analysis persisted",
		slog.Int("resume_id", resumeID),
		slog.Float64("score", result.Score),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// run walks Created → Extracting → Scoring → Persisted.
func (o *Orchestrator) run(ctx context.Context, state *State, resumeID int, jobDescription string) (*store.MatchScore, error) {
	metricsRun()

	resume, err := o.store.GetResume(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	*state = StateExtracting
	resumeText, err := o.extractor.Text(resume.FileURL)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	*state = StateScoring
	jobText := match.StripHTML(jobDescription)

	resumeNorm := match.Normalize(resumeText)
	jobNorm := match.Normalize(jobText)

	resumeKW := match.ExtractKeywords(resumeNorm)
	jobKW := match.ExtractKeywords(jobNorm)
	kwScore := match.KeywordScore(resumeKW, jobKW)

	sim, err := o.scorer.Similarity(ctx, resumeNorm, jobNorm)
	if err != nil {
		return nil, err
	}

	// Both sub-scores floored before blending so neither weak signal
	// alone can zero out the result.
	final := match.Combine(match.FloorScore(sim), match.FloorScore(kwScore))
	analysis := match.BuildAnalysis(final, resumeText, jobText, resumeKW, jobKW)

	sc := store.MatchScore{
		ResumeID: resumeID,
		Score:    final,
		Analysis: analysis,
		ScoredAt: time.Now(),
	}
	if err := o.store.ReplaceScore(ctx, sc); err != nil {
		return nil, err
	}

	*state = StatePersisted
	return &sc, nil
}

// AnalyzeCategory scores a resume against a built-in job category.
func (o *Orchestrator) AnalyzeCategory(ctx context.Context, resumeID int, category string, extraRequirements []string) (*store.MatchScore, error) {
	jd, err := match.BuildJobDescription(category, extraRequirements)
	if err != nil {
		o.record(resumeID, StateFailed, KindValidation, 0)
		metricsFailure(KindValidation)
		return nil, err
	}
	return o.Analyze(ctx, resumeID, jd)
}

// record writes the run outcome to the run log, if one is configured.
func (o *Orchestrator) record(resumeID int, state State, kind Kind, elapsed time.Duration) {
	if o.runlog == nil {
		return
	}
	if err := o.runlog.Record(RunRecord{
		ResumeID: resumeID,
		State:    string(state),
		Kind:     string(kind),
		Elapsed:  elapsed,
	}); err != nil {
		slog.Debug("run log write failed", slog.Any("error", err))
	}
}
