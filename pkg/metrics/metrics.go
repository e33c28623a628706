// Package metrics exposes Prometheus instruments for the upload pipeline and
// the leaderboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tree_rater"

// Upload results used as the "result" label.
const (
	ResultSuccess       = "success"
	ResultInvalid       = "invalid"
	ResultTooLarge      = "too_large"
	ResultBlobError     = "blob_error"
	ResultAIUnavailable = "ai_unavailable"
	ResultDBError       = "db_error"
)

// Manager owns a private registry so several instances (e.g. in tests) never
// collide on registration.
type Manager struct {
	registry *prometheus.Registry

	uploads            *prometheus.CounterVec
	uploadDuration     prometheus.Histogram
	inferenceDuration  *prometheus.HistogramVec
	rateLimited        prometheus.Counter
	leaderboardQueries *prometheus.CounterVec
}

func New() *Manager {
	reg := prometheus.NewRegistry()
	m := &Manager{
		registry: reg,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome.",
		}, []string{"result"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Wall time of the upload pipeline.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		inferenceDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Latency of oracle calls by engine.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"engine"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Uploads rejected by the per-IP limiter.",
		}),
		leaderboardQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_requests_total",
			Help:      "Leaderboard requests by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.uploads,
		m.uploadDuration,
		m.inferenceDuration,
		m.rateLimited,
		m.leaderboardQueries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is exposed for tests that gather values directly.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) ObserveUpload(result string, started time.Time) {
	m.uploads.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.uploadDuration.Observe(time.Since(started).Seconds())
	}
}

func (m *Manager) ObserveInference(engine string, d time.Duration) {
	m.inferenceDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (m *Manager) IncRateLimited() { m.rateLimited.Inc() }

func (m *Manager) IncLeaderboard(result string) {
	m.leaderboardQueries.WithLabelValues(result).Inc()
}
