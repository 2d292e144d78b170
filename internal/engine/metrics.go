package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	BatchRequests     atomic.Int64
	BatchRejected     atomic.Int64
	ItemsOK           atomic.Int64
	ItemsFailed       atomic.Int64
	PageFetches       atomic.Int64
	BrowserFetches    atomic.Int64
	CaptionFetches    atomic.Int64
	FetchErrors       atomic.Int64
	ArchivesBuilt     atomic.Int64
	MetadataFallbacks atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"batch_requests", "batch_rejected",
	"items_ok", "items_failed",
	"page_fetches", "browser_fetches", "caption_fetches", "fetch_errors",
	"archives_built", "metadata_fallbacks",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"batch_requests":     metrics.BatchRequests.Load(),
		"batch_rejected":     metrics.BatchRejected.Load(),
		"items_ok":           metrics.ItemsOK.Load(),
		"items_failed":       metrics.ItemsFailed.Load(),
		"page_fetches":       metrics.PageFetches.Load(),
		"browser_fetches":    metrics.BrowserFetches.Load(),
		"caption_fetches":    metrics.CaptionFetches.Load(),
		"fetch_errors":       metrics.FetchErrors.Load(),
		"archives_built":     metrics.ArchivesBuilt.Load(),
		"metadata_fallbacks": metrics.MetadataFallbacks.Load(),
		"cache_hits":         hits,
		"cache_misses":       misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for batch/ and sources/ sub-packages.
func IncrBatchRequests()     { metrics.BatchRequests.Add(1) }
func IncrBatchRejected()     { metrics.BatchRejected.Add(1) }
func IncrItemsOK()           { metrics.ItemsOK.Add(1) }
func IncrItemsFailed()       { metrics.ItemsFailed.Add(1) }
func IncrMetadataFallbacks() { metrics.MetadataFallbacks.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
