package pipeline

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Operational counters for the analysis pipeline. Atomic for
// thread-safe access from concurrent analysis calls.
var metrics struct {
	Runs              atomic.Int64
	Persisted         atomic.Int64
	FailedFileMissing atomic.Int64
	FailedExtraction  atomic.Int64
	FailedEmbedding   atomic.Int64
	FailedValidation  atomic.Int64
	FailedTimeout     atomic.Int64
	FailedInternal    atomic.Int64
}

func metricsRun()       { metrics.Runs.Add(1) }
func metricsPersisted() { metrics.Persisted.Add(1) }

func metricsFailure(kind Kind) {
	switch kind {
	case KindFileNotFound:
		metrics.FailedFileMissing.Add(1)
	case KindExtraction:
		metrics.FailedExtraction.Add(1)
	case KindEmbedding:
		metrics.FailedEmbedding.Add(1)
	case KindValidation:
		metrics.FailedValidation.Add(1)
	case KindTimeout:
		metrics.FailedTimeout.Add(1)
	default:
		metrics.FailedInternal.Add(1)
	}
}

// Metrics returns a snapshot of all pipeline counters.
func Metrics() map[string]int64 {
	return map[string]int64{
		"analysis_runs":              metrics.Runs.Load(),
		"analysis_persisted":         metrics.Persisted.Load(),
		"analysis_failed_file":       metrics.FailedFileMissing.Load(),
		"analysis_failed_extraction": metrics.FailedExtraction.Load(),
		"analysis_failed_embedding":  metrics.FailedEmbedding.Load(),
		"analysis_failed_validation": metrics.FailedValidation.Load(),
		"analysis_failed_timeout":    metrics.FailedTimeout.Load(),
		"analysis_failed_internal":   metrics.FailedInternal.Load(),
	}
}

// FormatMetrics renders pipeline counters plus any extra counters as a
// simple text format for the HTTP endpoint.
func FormatMetrics(extra map[string]int64) string {
	m := Metrics()
	keys := []string{
		"analysis_runs", "analysis_persisted",
		"analysis_failed_file", "analysis_failed_extraction",
		"analysis_failed_embedding", "analysis_failed_validation",
		"analysis_failed_timeout", "analysis_failed_internal",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	for _, k := range []string{"embed_calls", "embed_errors", "embed_cache_hits", "embed_cache_misses"} {
		if v, ok := extra[k]; ok {
			fmt.Fprintf(&sb, "%s %d\n", k, v)
		}
	}
	return sb.String()
}
