package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the service.
var metrics struct {
	SearchRequests    atomic.Int64
	SuggestRequests   atomic.Int64
	VideoRequests     atomic.Int64
	FetchRequests     atomic.Int64
	FetchErrors       atomic.Int64
	EmptyExtractions  atomic.Int64
	ExtractionErrors  atomic.Int64
	FavoriteWrites    atomic.Int64
	HistoryWrites     atomic.Int64
	PersistenceErrors atomic.Int64
}

// IncrSearch increments the search request counter.
func IncrSearch() { metrics.SearchRequests.Add(1) }

// IncrSuggest increments the suggest request counter.
func IncrSuggest() { metrics.SuggestRequests.Add(1) }

// IncrVideo increments the video detail request counter.
func IncrVideo() { metrics.VideoRequests.Add(1) }

// IncrFetch increments the outbound fetch counter.
func IncrFetch() { metrics.FetchRequests.Add(1) }

// IncrFetchError increments the outbound fetch error counter.
func IncrFetchError() { metrics.FetchErrors.Add(1) }

// IncrEmptyExtraction counts fetched pages without the embedded-data marker.
func IncrEmptyExtraction() { metrics.EmptyExtractions.Add(1) }

// IncrExtractionError counts malformed embedded-data payloads.
func IncrExtractionError() { metrics.ExtractionErrors.Add(1) }

// IncrFavoriteWrite increments the favorite write counter.
func IncrFavoriteWrite() { metrics.FavoriteWrites.Add(1) }

// IncrHistoryWrite increments the history write counter.
func IncrHistoryWrite() { metrics.HistoryWrites.Add(1) }

// IncrPersistenceError increments the store error counter.
func IncrPersistenceError() { metrics.PersistenceErrors.Add(1) }

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"search_requests":    metrics.SearchRequests.Load(),
		"suggest_requests":   metrics.SuggestRequests.Load(),
		"video_requests":     metrics.VideoRequests.Load(),
		"fetch_requests":     metrics.FetchRequests.Load(),
		"fetch_errors":       metrics.FetchErrors.Load(),
		"empty_extractions":  metrics.EmptyExtractions.Load(),
		"extraction_errors":  metrics.ExtractionErrors.Load(),
		"favorite_writes":    metrics.FavoriteWrites.Load(),
		"history_writes":     metrics.HistoryWrites.Load(),
		"persistence_errors": metrics.PersistenceErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "suggest_requests", "video_requests",
		"fetch_requests", "fetch_errors",
		"empty_extractions", "extraction_errors",
		"favorite_writes", "history_writes", "persistence_errors",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
