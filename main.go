// match is the CareerCrush resume-to-job matching service.
//
// Scores uploaded resumes against job descriptions by blending
// sentence-embedding similarity with weighted keyword overlap, persists
// one live score per resume, and sweeps unanalyzed resumes in the
// background. Invoked by the surrounding application over a thin JSON
// API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/careercrush/match/internal/embed"
	"github.com/careercrush/match/internal/extract"
	"github.com/careercrush/match/internal/httpapi"
	"github.com/careercrush/match/internal/pipeline"
	"github.com/careercrush/match/internal/store"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var (
		httpPort      = env.Str("HTTP_PORT", "8090")
		databaseURL   = env.Str("DATABASE_URL", "")
		storageRoot   = env.Str("STORAGE_ROOT", "./storage/resumes")
		runlogDir     = env.Str("RUNLOG_DIR", "./data")
		embedAPIKey   = env.Str("EMBED_API_KEY", "")
		embedAPIBase  = env.Str("EMBED_API_BASE", "http://127.0.0.1:8000/v1")
		embedModel    = env.Str("EMBED_MODEL", "all-MiniLM-L6-v2")
		embedRPS      = env.Float("EMBED_RPS", 10)
		redisURL      = env.Str("REDIS_URL", "")
		cacheTTL      = env.Duration("EMBED_CACHE_TTL", 24*time.Hour)
		cacheEntries  = env.Int("EMBED_CACHE_ENTRIES", 1000)
		analysisTO    = env.Duration("ANALYSIS_TIMEOUT", 60*time.Second)
		sweepInterval = env.Duration("SWEEP_INTERVAL", 5*time.Minute)
		sweepBatch    = env.Int("SWEEP_BATCH", 50)
		sweepEnabled  = env.Str("SWEEP_ENABLED", "true") == "true"
	)

	slog.Info("starting careercrush match service",
		slog.String("version", version),
		slog.String("port", httpPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Connect(ctx, databaseURL)
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	scorer := embed.New(embed.Config{
		APIKey:            embedAPIKey,
		BaseURL:           embedAPIBase,
		Model:             embedModel,
		RequestsPerSecond: embedRPS,
		RedisURL:          redisURL,
		CacheTTL:          cacheTTL,
		MaxEntries:        cacheEntries,
	})

	runlog, err := pipeline.OpenRunLog(runlogDir)
	if err != nil {
		slog.Warn("run log init failed, continuing without it", slog.Any("error", err))
		runlog = nil
	} else {
		defer runlog.Close()
	}

	orch := pipeline.New(st, extract.New(storageRoot), scorer, runlog, analysisTO)

	if sweepEnabled {
		go pipeline.NewSweeper(orch, sweepInterval, sweepBatch).Run(ctx)
	}

	router := gin.Default()
	httpapi.Register(router, st, orch, runlog, func() map[string]int64 {
		calls, errs, hits, misses := scorer.Stats()
		return map[string]int64{
			"embed_calls":        calls,
			"embed_errors":       errs,
			"embed_cache_hits":   hits,
			"embed_cache_misses": misses,
		}
	})

	srv := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown incomplete", slog.Any("error", err))
	}
}
