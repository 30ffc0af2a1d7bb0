package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/careercrush/match/internal/match"
)

// Sweeper periodically finds resumes without a score and analyzes them
// against every built-in job category. Analysis failures are isolated
// per resume; a bad file never stalls the sweep.
type Sweeper struct {
	orch     *Orchestrator
	interval time.Duration
	batch    int
}

// NewSweeper builds a sweeper. interval <= 0 defaults to 5 minutes.
func NewSweeper(orch *Orchestrator, interval time.Duration, batch int) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batch <= 0 {
		batch = 50
	}
	return &Sweeper{orch: orch, interval: interval, batch: batch}
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("auto-analysis sweeper started", slog.Duration("interval", s.interval))

	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("auto-analysis sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep analyzes one batch of unanalyzed resumes.
func (s *Sweeper) sweep(ctx context.Context) {
	resumes, err := s.orch.store.UnanalyzedResumes(ctx, s.batch)
	if err != nil {
		slog.Warn("sweep: listing unanalyzed resumes failed", slog.Any("error", err))
		return
	}
	if len(resumes) == 0 {
		return
	}

	slog.Info("sweep: found resumes to analyze", slog.Int("count", len(resumes)))
	for _, r := range resumes {
		for _, category := range match.CategoryKeys() {
			if ctx.Err() != nil {
				return
			}
			// Errors are already logged and counted by Analyze; keep
			// going so one broken resume can't block the rest.
			_, _ = s.orch.AnalyzeCategory(ctx, r.ID, category, nil)
		}
	}
}
