package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects dashboard metrics using Prometheus.
// ⭐ SSOT: every metric name is declared here
type Recorder struct {
	registry *prometheus.Registry

	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	feedRefreshes    *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	httpRequests     *prometheus.CounterVec
}

// New creates a recorder backed by its own registry, so several recorders
// can coexist (tests, CLI) without colliding on the default registerer.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranker_upstream_requests_total",
				Help: "Requests sent to the ranking API",
			},
			[]string{"method", "status"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ranker_upstream_duration_seconds",
				Help:    "Duration of ranking API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranker_errors_total",
				Help: "Errors by kind (preference_write, feed_fetch, custom_domain, ...)",
			},
			[]string{"kind"},
		),
		feedRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranker_feed_refreshes_total",
				Help: "Rankings snapshot refreshes by outcome",
			},
			[]string{"outcome"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ranker_view_sessions",
				Help: "View sessions currently held in memory",
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ranker_http_requests_total",
				Help: "Dashboard HTTP requests served",
			},
			[]string{"route", "code"},
		),
	}
}

// RecordUpstream records one outbound request and its latency.
func (r *Recorder) RecordUpstream(method, status string, seconds float64) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(method, status).Inc()
	r.upstreamLatency.WithLabelValues(method).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFeedRefresh records a snapshot refresh ("ok", "error", "skipped").
func (r *Recorder) RecordFeedRefresh(outcome string) {
	if r == nil {
		return
	}
	r.feedRefreshes.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the view-session gauge.
func (r *Recorder) SetActiveSessions(n int) {
	if r == nil {
		return
	}
	r.activeSessions.Set(float64(n))
}

// RecordHTTP records a served request.
func (r *Recorder) RecordHTTP(route, code string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, code).Inc()
}

// Registry exposes the underlying registry (tests use it to gather).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
