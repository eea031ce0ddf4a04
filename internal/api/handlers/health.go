package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/feed"
	"github.com/yarin-claude-code/stocks/internal/scheduler"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

// FeedStatus reports the state of the shared rankings feed
type FeedStatus interface {
	Status() feed.Status
}

// UpstreamHealth checks the ranking API
type UpstreamHealth interface {
	Health(ctx context.Context) (*contracts.Health, error)
}

// JobStatsSource reports scheduled job statistics
type JobStatsSource interface {
	GetJobStats() map[string]scheduler.JobStats
}

// HealthHandler reports service health
type HealthHandler struct {
	feed     FeedStatus
	upstream UpstreamHealth
	jobs     JobStatsSource
	timeout  time.Duration
	logger   *logger.Logger
}

// NewHealthHandler creates a new health handler. jobs may be nil.
func NewHealthHandler(f FeedStatus, upstream UpstreamHealth, jobs JobStatsSource, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		feed:     f,
		upstream: upstream,
		jobs:     jobs,
		timeout:  3 * time.Second,
		logger:   log,
	}
}

type healthResponse struct {
	Status      string                        `json:"status"`
	Service     string                        `json:"service"`
	FeedLoaded  bool                          `json:"feed_loaded"`
	FetchedAt   *time.Time                    `json:"fetched_at,omitempty"`
	LastError   string                        `json:"last_error,omitempty"`
	Jobs        map[string]scheduler.JobStats `json:"jobs,omitempty"`
	Upstream    *contracts.Health             `json:"upstream,omitempty"`
	UpstreamErr string                        `json:"upstream_error,omitempty"`
}

// Check returns service health. The service is degraded, not down, when
// the ranking API cannot be reached.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	st := h.feed.Status()
	resp := healthResponse{
		Status:     "ok",
		Service:    "smart-stock-ranker",
		FeedLoaded: st.Loaded,
	}
	if !st.FetchedAt.IsZero() {
		t := st.FetchedAt
		resp.FetchedAt = &t
	}
	resp.LastError = st.LastError
	if h.jobs != nil {
		resp.Jobs = h.jobs.GetJobStats()
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	up, err := h.upstream.Health(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Ranking API health check failed")
		resp.Status = "degraded"
		resp.UpstreamErr = err.Error()
	} else {
		resp.Upstream = up
	}

	respondJSON(w, http.StatusOK, resp)
}
