package api

import (
	"net/http"

	"lessonlab/pkg/tracker"
)

// BatchCounter reports how many sentence batches are currently cached.
type BatchCounter interface {
	Len() int
}

// StatsHandler serves usage statistics.
type StatsHandler struct {
	tracker *tracker.Tracker
	cache   BatchCounter
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(t *tracker.Tracker, cache BatchCounter) *StatsHandler {
	return &StatsHandler{tracker: t, cache: cache}
}

// ProviderStatsDTO is the wire shape for per-collaborator counters.
type ProviderStatsDTO struct {
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	APISuccess  int64 `json:"api_success"`
	APIFailures int64 `json:"api_errors"`
	Fallbacks   int64 `json:"fallbacks"`
	HitRate     int64 `json:"hit_rate"`
}

// StatsResponse is the payload for GET /api/stats.
type StatsResponse struct {
	CachedBatches int                         `json:"cached_batches"`
	Providers     map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	resp := StatsResponse{
		Providers: make(map[string]ProviderStatsDTO),
	}
	if h.cache != nil {
		resp.CachedBatches = h.cache.Len()
	}

	for provider, stats := range snapshot {
		totalCache := stats.CacheHits + stats.CacheMisses
		hitRate := int64(0)
		if totalCache > 0 {
			hitRate = (stats.CacheHits * 100) / totalCache
		}
		resp.Providers[provider] = ProviderStatsDTO{
			CacheHits:   stats.CacheHits,
			CacheMisses: stats.CacheMisses,
			APISuccess:  stats.APISuccess,
			APIFailures: stats.APIFailures,
			Fallbacks:   stats.Fallbacks,
			HitRate:     hitRate,
		}
	}

	writeJSON(w, resp)
}
