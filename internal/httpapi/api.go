// Package httpapi exposes the matching pipeline to the surrounding
// application over a thin JSON API. No auth here: the service sits
// behind the app gateway.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careercrush/match/internal/pipeline"
	"github.com/careercrush/match/internal/store"
)

// Stats supplies embedding client counters for the metrics endpoint.
type Stats func() map[string]int64

// Handler wires pipeline and store into HTTP routes.
type Handler struct {
	store  *store.Store
	orch   *pipeline.Orchestrator
	runlog *pipeline.RunLog // nil disables /runs
	stats  Stats
}

// Register mounts all routes on the router.
func Register(router *gin.Engine, st *store.Store, orch *pipeline.Orchestrator, runlog *pipeline.RunLog, stats Stats) {
	h := &Handler{store: st, orch: orch, runlog: runlog, stats: stats}

	router.POST("/resumes", h.createResume)
	router.POST("/resumes/:id/analyze", h.analyze)
	router.GET("/resumes/:id/score", h.getScore)
	router.DELETE("/resumes/:id", h.deleteResume)
	router.DELETE("/resumes/:id/score", h.deleteScore)
	router.GET("/employees/:id/resumes", h.listEmployeeResumes)
	router.GET("/scores", h.listScores)
	router.GET("/runs", h.listRuns)
	router.GET("/healthz", h.health)
	router.GET("/metrics", h.metrics)
}

type createResumeRequest struct {
	EmployeeID int    `json:"employee_id" binding:"required"`
	FileURL    string `json:"file_url" binding:"required"`
}

// createResume registers an already-stored resume file for matching.
// Upload and storage of the file itself belong to the surrounding app.
func (h *Handler) createResume(c *gin.Context) {
	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.store.CreateResume(c.Request.Context(), req.EmployeeID, req.FileURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resume"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type analyzeRequest struct {
	JobDescription string   `json:"job_description"`
	Category       string   `json:"category"`
	Requirements   []string `json:"requirements"`
}

// analyze runs the pipeline for one resume. Analysis failure leaves
// the resume untouched; the response maps the failure kind to a status
// code so the caller can distinguish "fix your request" from "retry
// later".
func (h *Handler) analyze(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		sc  *store.MatchScore
		err error
	)
	if req.Category != "" {
		sc, err = h.orch.AnalyzeCategory(c.Request.Context(), id, req.Category, req.Requirements)
	} else {
		sc, err = h.orch.Analyze(c.Request.Context(), id, req.JobDescription)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sc)
}

// getScore returns the current score for a resume. A resume without a
// score is a valid state, reported as 404 with a distinguishable body.
func (h *Handler) getScore(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}

	sc, err := h.store.GetScore(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not yet analyzed", "resume_id": id})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load score"})
		return
	}
	c.JSON(http.StatusOK, sc)
}

// deleteResume removes a resume; its score cascades away.
func (h *Handler) deleteResume(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteResume(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resume"})
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteScore drops the current score, returning the resume to the
// "not yet analyzed" state until the next analysis or sweep.
func (h *Handler) deleteScore(c *gin.Context) {
	id, ok := resumeID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteScore(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete score"})
		return
	}
	c.Status(http.StatusNoContent)
}

// listEmployeeResumes returns an employee's uploaded resumes, newest
// first.
func (h *Handler) listEmployeeResumes(c *gin.Context) {
	employeeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || employeeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	resumes, err := h.store.ResumesByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resumes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumes": resumes, "total": len(resumes)})
}

// listScores returns all scores joined with candidate profiles, best
// match first.
func (h *Handler) listScores(c *gin.Context) {
	scores, err := h.store.ScoresWithProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores, "total": len(scores)})
}

// listRuns returns recent pipeline runs from the run log.
func (h *Handler) listRuns(c *gin.Context) {
	if h.runlog == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run log disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.runlog.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) metrics(c *gin.Context) {
	var extra map[string]int64
	if h.stats != nil {
		extra = h.stats()
	}
	c.String(http.StatusOK, pipeline.FormatMetrics(extra))
}

// resumeID parses the :id path parameter, writing a 400 on failure.
func resumeID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resume id"})
		return 0, false
	}
	return id, true
}

// writeError maps pipeline failure kinds to HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resume not found"})
		return
	}

	kind := pipeline.Classify(err)
	status := http.StatusInternalServerError
	switch kind {
	case pipeline.KindFileNotFound:
		status = http.StatusNotFound
	case pipeline.KindExtraction:
		status = http.StatusUnprocessableEntity
	case pipeline.KindValidation:
		status = http.StatusBadRequest
	case pipeline.KindEmbedding:
		status = http.StatusBadGateway
	case pipeline.KindTimeout:
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error(), "kind": string(kind)})
}
