package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/careercrush/match/internal/embed"
	"github.com/careercrush/match/internal/extract"
	"github.com/careercrush/match/internal/match"
	"github.com/careercrush/match/internal/store"
)

const (
	testResumeText = "5 years of experience with Django and Python REST APIs"
	testJobText    = "Looking for a Django developer with Python experience"
)

type fakeStore struct {
	mu           sync.Mutex
	resumes      map[int]store.Resume
	scores       map[int]store.MatchScore
	replaceCalls int
}

func newFakeStore(resumes ...store.Resume) *fakeStore {
	f := &fakeStore{
		resumes: make(map[int]store.Resume),
		scores:  make(map[int]store.MatchScore),
	}
	for _, r := range resumes {
		f.resumes[r.ID] = r
	}
	return f
}

func (f *fakeStore) GetResume(_ context.Context, id int) (*store.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %d: %w", id, store.ErrNotFound)
	}
	return &r, nil
}

func (f *fakeStore) ReplaceScore(_ context.Context, sc store.MatchScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	f.scores[sc.ResumeID] = sc
	return nil
}

func (f *fakeStore) UnanalyzedResumes(_ context.Context, limit int) ([]store.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Resume
	for id, r := range f.resumes {
		if _, scored := f.scores[id]; !scored && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeExtractor struct {
	texts map[string]string
}

func (f *fakeExtractor) Text(ref string) (string, error) {
	text, ok := f.texts[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", extract.ErrFileNotFound, ref)
	}
	return text, nil
}

type fakeScorer struct {
	sim float64
	err error
}

func (f *fakeScorer) Similarity(context.Context, string, string) (float64, error) {
	return f.sim, f.err
}

// blockingScorer never answers; it only honors cancellation.
type blockingScorer struct{}

func (blockingScorer) Similarity(ctx context.Context, _, _ string) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func testOrchestrator(st Store, sim float64) *Orchestrator {
	ex := &fakeExtractor{texts: map[string]string{"cv.txt": testResumeText}}
	return New(st, ex, &fakeScorer{sim: sim}, nil, time.Minute)
}

func TestAnalyzePersistsBlendedScore(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, EmployeeID: 7, FileURL: "cv.txt"})
	orch := testOrchestrator(st, 0.72)

	sc, err := orch.Analyze(context.Background(), 1, testJobText)
	require.NoError(t, err)

	// keyword sub-score: one experience hit (1.2) + django + python
	// over 6 job keywords = 0.5333; blended 0.6*0.72 + 0.4*0.5333.
	require.InDelta(t, 0.6453, sc.Score, 0.001)
	require.Contains(t, sc.Analysis, "Match score:")
	require.Contains(t, sc.Analysis, "good match")

	stored, ok := st.scores[1]
	require.True(t, ok, "score not persisted")
	require.Equal(t, sc.Score, stored.Score)
}

func TestAnalyzeWeakSignalsFloorAtMinimum(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "cv.txt"})
	orch := testOrchestrator(st, 0.05)

	sc, err := orch.Analyze(context.Background(), 1, "")
	require.NoError(t, err)
	require.InDelta(t, 0.3, sc.Score, 1e-9)
	require.False(t, sc.Score != sc.Score, "score is NaN")
}

func TestAnalyzeReplacesPriorScore(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "cv.txt"})

	first, err := testOrchestrator(st, 0.9).Analyze(context.Background(), 1, testJobText)
	require.NoError(t, err)
	second, err := testOrchestrator(st, 0.4).Analyze(context.Background(), 1, testJobText)
	require.NoError(t, err)

	require.NotEqual(t, first.Score, second.Score)
	require.Len(t, st.scores, 1, "re-analysis must replace, not accumulate")
	require.Equal(t, 2, st.replaceCalls)
	require.Equal(t, second.Score, st.scores[1].Score)
}

func TestAnalyzeUnknownResume(t *testing.T) {
	orch := testOrchestrator(newFakeStore(), 0.5)

	_, err := orch.Analyze(context.Background(), 99, testJobText)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalyzeMissingFile(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "gone.pdf"})
	orch := testOrchestrator(st, 0.5)

	_, err := orch.Analyze(context.Background(), 1, testJobText)
	require.ErrorIs(t, err, extract.ErrFileNotFound)
	require.Equal(t, KindFileNotFound, Classify(err))
	require.Empty(t, st.scores, "failed analysis must not write a score")
}

func TestAnalyzeEmbeddingFailure(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "cv.txt"})
	ex := &fakeExtractor{texts: map[string]string{"cv.txt": testResumeText}}
	scorer := &fakeScorer{err: fmt.Errorf("%w: model unavailable", embed.ErrEmbedding)}
	orch := New(st, ex, scorer, nil, time.Minute)

	_, err := orch.Analyze(context.Background(), 1, testJobText)
	require.ErrorIs(t, err, embed.ErrEmbedding)
	require.Equal(t, KindEmbedding, Classify(err))
	require.Empty(t, st.scores)
}

func TestAnalyzeTimeout(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "cv.txt"})
	ex := &fakeExtractor{texts: map[string]string{"cv.txt": testResumeText}}
	orch := New(st, ex, blockingScorer{}, nil, 20*time.Millisecond)

	_, err := orch.Analyze(context.Background(), 1, testJobText)
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, KindTimeout, Classify(err))
	require.Empty(t, st.scores)
}

func TestAnalyzeCategory(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "cv.txt"})
	orch := testOrchestrator(st, 0.6)

	sc, err := orch.AnalyzeCategory(context.Background(), 1, "technical", []string{"Go experience"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, sc.Score, 0.3)
	require.LessOrEqual(t, sc.Score, 1.0)
}

func TestAnalyzeCategoryInvalid(t *testing.T) {
	st := newFakeStore(store.Resume{ID: 1, FileURL: "cv.txt"})
	orch := testOrchestrator(st, 0.6)

	_, err := orch.AnalyzeCategory(context.Background(), 1, "sportsball", nil)
	require.ErrorIs(t, err, match.ErrInvalidCategory)
	require.Equal(t, KindValidation, Classify(err))
	require.Empty(t, st.scores)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"file not found", fmt.Errorf("x: %w", extract.ErrFileNotFound), KindFileNotFound},
		{"extraction", fmt.Errorf("x: %w", extract.ErrExtraction), KindExtraction},
		{"embedding", fmt.Errorf("x: %w", embed.ErrEmbedding), KindEmbedding},
		{"validation", fmt.Errorf("x: %w", match.ErrInvalidCategory), KindValidation},
		{"timeout", fmt.Errorf("x: %w", ErrTimeout), KindTimeout},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"other", fmt.Errorf("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSweeperAnalyzesUnscoredResumes(t *testing.T) {
	st := newFakeStore(
		store.Resume{ID: 1, FileURL: "cv.txt"},
		store.Resume{ID: 2, FileURL: "gone.pdf"},
	)
	orch := testOrchestrator(st, 0.5)
	s := NewSweeper(orch, time.Minute, 10)

	s.sweep(context.Background())

	require.Contains(t, st.scores, 1, "unscored resume should be analyzed")
	require.NotContains(t, st.scores, 2, "broken resume must stay unscored")
}

func TestFormatMetrics(t *testing.T) {
	out := FormatMetrics(map[string]int64{"embed_calls": 3, "embed_cache_hits": 1})
	for _, want := range []string{"analysis_runs ", "analysis_persisted ", "embed_calls 3", "embed_cache_hits 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
}
