// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	AnalysesGenerated *prometheus.CounterVec
	Simulations       prometheus.Counter
	GoalsSimulated    prometheus.Histogram
	FormationsSaved   prometheus.Counter
	CheckoutSessions  *prometheus.CounterVec
	TeamSyncRuns      *prometheus.CounterVec
	BackendLatency    *prometheus.HistogramVec
	ActiveProgress    prometheus.Gauge
}

// NewMetrics registers every metric on reg. Pass prometheus.NewRegistry()
// in tests so repeated construction does not collide.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "stattact"
	}
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		AnalysesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_generated_total",
			Help:      "Tactical analyses produced, by source (backend, mock, fallback).",
		}, []string{"source"}),
		Simulations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Mock matches simulated.",
		}),
		GoalsSimulated: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulated_goals",
			Help:      "Total goals per simulated match.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7},
		}),
		FormationsSaved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "formations_saved_total",
			Help:      "Formations saved by users.",
		}),
		CheckoutSessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_sessions_total",
			Help:      "Checkout session attempts by status.",
		}, []string{"status"}),
		TeamSyncRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "team_sync_runs_total",
			Help:      "Team sync worker runs by status.",
		}, []string{"status"}),
		BackendLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_seconds",
			Help:      "Latency of calls to the tactics backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ActiveProgress: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "progress_trackers_active",
			Help:      "Progress trackers currently ticking.",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

func (m *Metrics) AnalysisGenerated(source string) {
	if m == nil {
		return
	}
	m.AnalysesGenerated.WithLabelValues(source).Inc()
}

func (m *Metrics) MatchSimulated(goals int) {
	if m == nil {
		return
	}
	m.Simulations.Inc()
	m.GoalsSimulated.Observe(float64(goals))
}

func (m *Metrics) FormationSaved() {
	if m == nil {
		return
	}
	m.FormationsSaved.Inc()
}

func (m *Metrics) CheckoutSession(status string) {
	if m == nil {
		return
	}
	m.CheckoutSessions.WithLabelValues(status).Inc()
}

func (m *Metrics) TeamSync(status string) {
	if m == nil {
		return
	}
	m.TeamSyncRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveBackend(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) ProgressStarted() {
	if m == nil {
		return
	}
	m.ActiveProgress.Inc()
}

func (m *Metrics) ProgressStopped() {
	if m == nil {
		return
	}
	m.ActiveProgress.Dec()
}
