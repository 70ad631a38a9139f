// Package metrics provides Prometheus metrics for the assistant.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	TrackerRequestsTotal *prometheus.CounterVec
	TrackerRetriesTotal  prometheus.Counter
	GroomRequestsTotal   *prometheus.CounterVec
	GroomDuration        *prometheus.HistogramVec
	IssuesCreatedTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		TrackerRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_tracker_requests_total",
				Help: "Tracker API calls by method and status code.",
			},
			[]string{"method", "status"},
		),
		TrackerRetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_tracker_retries_total",
				Help: "Rate-limit retries against the tracker.",
			},
		),
		GroomRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_groom_requests_total",
				Help: "Grooming exchanges by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		GroomDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assistant_groom_duration_seconds",
				Help:    "Grooming exchange duration by kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		IssuesCreatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_issues_created_total",
				Help: "Issues written back to the tracker by type.",
			},
			[]string{"type"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.TrackerRequestsTotal,
		m.TrackerRetriesTotal,
		m.GroomRequestsTotal,
		m.GroomDuration,
		m.IssuesCreatedTotal,
	)
	return m
}

// ObserveRequest counts one tracker API call.
func (m *Metrics) ObserveRequest(method string, status int) {
	m.TrackerRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveRetry counts one rate-limit retry.
func (m *Metrics) ObserveRetry() {
	m.TrackerRetriesTotal.Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
