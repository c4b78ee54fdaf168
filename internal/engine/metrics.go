package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across a mining run.
var metrics struct {
	WatchPageRequests atomic.Int64
	WatchPageErrors   atomic.Int64
	ExtractErrors     atomic.Int64
	ParseErrors       atomic.Int64
	DataAPIRequests   atomic.Int64
	MinedVideos       atomic.Int64
	FailedVideos      atomic.Int64
	CheckpointSkips   atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"watch_page_requests": metrics.WatchPageRequests.Load(),
		"watch_page_errors":   metrics.WatchPageErrors.Load(),
		"extract_errors":      metrics.ExtractErrors.Load(),
		"parse_errors":        metrics.ParseErrors.Load(),
		"data_api_requests":   metrics.DataAPIRequests.Load(),
		"mined_videos":        metrics.MinedVideos.Load(),
		"failed_videos":       metrics.FailedVideos.Load(),
		"checkpoint_skips":    metrics.CheckpointSkips.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for end-of-run logging.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"watch_page_requests", "watch_page_errors",
		"extract_errors", "parse_errors",
		"data_api_requests",
		"mined_videos", "failed_videos", "checkpoint_skips",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the scraper sub-package.
func IncrWatchPageRequests() { metrics.WatchPageRequests.Add(1) }
func IncrWatchPageErrors()   { metrics.WatchPageErrors.Add(1) }
func IncrExtractErrors()     { metrics.ExtractErrors.Add(1) }
func IncrParseErrors()       { metrics.ParseErrors.Add(1) }

// Incrementors for the youtube and campaign sub-packages.
func IncrDataAPIRequests() { metrics.DataAPIRequests.Add(1) }
func IncrMinedVideos()     { metrics.MinedVideos.Add(1) }
func IncrFailedVideos()    { metrics.FailedVideos.Add(1) }
func IncrCheckpointSkips() { metrics.CheckpointSkips.Add(1) }
