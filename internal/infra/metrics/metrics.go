// Package metrics owns the Prometheus registry and the collectors the
// service reports through.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "booksum"

// Metrics groups every collector registered by the service.
type Metrics struct {
	registry *prometheus.Registry

	authOutcomes *prometheus.CounterVec
	hashSeconds  prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New builds a private registry so tests can create as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		hashSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "password_hash_seconds",
			Help:      "Time spent computing or verifying bcrypt hashes.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authOutcomes,
		m.hashSeconds,
		m.httpRequests,
		m.httpLatency,
	)

	return m
}

// ObserveOutcome counts one finished authentication operation.
func (m *Metrics) ObserveOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// ObserveHash records how long a single bcrypt computation took.
func (m *Metrics) ObserveHash(d time.Duration) {
	if m == nil {
		return
	}
	m.hashSeconds.Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
