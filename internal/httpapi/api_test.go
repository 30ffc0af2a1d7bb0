package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/careercrush/match/internal/pipeline"
	"github.com/careercrush/match/internal/store"
)

type fakeStore struct {
	resumes map[int]store.Resume
	scores  map[int]store.MatchScore
}

func (f *fakeStore) GetResume(_ context.Context, id int) (*store.Resume, error) {
	r, ok := f.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %d: %w", id, store.ErrNotFound)
	}
	return &r, nil
}

func (f *fakeStore) ReplaceScore(_ context.Context, sc store.MatchScore) error {
	f.scores[sc.ResumeID] = sc
	return nil
}

func (f *fakeStore) UnanalyzedResumes(context.Context, int) ([]store.Resume, error) {
	return nil, nil
}

type fakeExtractor struct{ text string }

func (f *fakeExtractor) Text(string) (string, error) { return f.text, nil }

type fakeScorer struct{ sim float64 }

func (f *fakeScorer) Similarity(context.Context, string, string) (float64, error) {
	return f.sim, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := &fakeStore{
		resumes: map[int]store.Resume{1: {ID: 1, EmployeeID: 7, FileURL: "cv.txt"}},
		scores:  make(map[int]store.MatchScore),
	}
	orch := pipeline.New(fs, &fakeExtractor{text: "Python developer with Django experience"}, &fakeScorer{sim: 0.7}, nil, time.Minute)

	router := gin.New()
	Register(router, nil, orch, nil, func() map[string]int64 {
		return map[string]int64{"embed_calls": 2}
	})
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(testRouter(t), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(testRouter(t), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "analysis_runs")
	require.Contains(t, w.Body.String(), "embed_calls 2")
}

func TestAnalyzeSuccess(t *testing.T) {
	w := do(testRouter(t), http.MethodPost, "/resumes/1/analyze",
		`{"job_description": "Looking for a Python developer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"score"`)
	require.Contains(t, w.Body.String(), `"analysis"`)
}

func TestAnalyzeCategory(t *testing.T) {
	w := do(testRouter(t), http.MethodPost, "/resumes/1/analyze", `{"category": "technical"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"score"`)
}

func TestAnalyzeInvalidCategory(t *testing.T) {
	w := do(testRouter(t), http.MethodPost, "/resumes/1/analyze", `{"category": "sportsball"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "validation")
}

func TestAnalyzeUnknownResume(t *testing.T) {
	w := do(testRouter(t), http.MethodPost, "/resumes/99/analyze",
		`{"job_description": "anything"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyzeBadID(t *testing.T) {
	for _, id := range []string{"abc", "0", "-4"} {
		w := do(testRouter(t), http.MethodPost, "/resumes/"+id+"/analyze", `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
}

func TestRunsDisabled(t *testing.T) {
	w := do(testRouter(t), http.MethodGet, "/runs", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
