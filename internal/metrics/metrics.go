package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// TokenAcquisitions counts GetAccessToken outcomes by path (cached, refresh, interactive)
	TokenAcquisitions *prometheus.CounterVec
	// APIRequests counts client operations by data source and outcome
	APIRequests *prometheus.CounterVec
	// APIRequestDuration tracks client operation latency
	APIRequestDuration *prometheus.HistogramVec
	// CallbackRequests counts requests hitting the local redirect listener
	CallbackRequests *prometheus.CounterVec
	// CallbackInFlight current redirect listener requests being processed
	CallbackInFlight prometheus.Gauge
	// registry is the custom registry for this metrics instance
	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TokenAcquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_acquisitions_total",
				Help:      "Total number of access token acquisitions",
			},
			[]string{"path", "outcome"},
		),
		APIRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of task API operations",
			},
			[]string{"operation", "source", "outcome"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Task API operation latency in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"operation"},
		),
		CallbackRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "callback_requests_total",
				Help:      "Total number of OAuth redirect requests received",
			},
			[]string{"endpoint", "status"},
		),
		CallbackInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "callback_requests_in_flight",
				Help:      "Current number of OAuth redirect requests being processed",
			},
		),
	}

	registry.MustRegister(
		m.TokenAcquisitions,
		m.APIRequests,
		m.APIRequestDuration,
		m.CallbackRequests,
		m.CallbackInFlight,
	)

	return m
}

// Handler returns an HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordTokenAcquisition records one GetAccessToken outcome.
func (m *Metrics) RecordTokenAcquisition(path, outcome string) {
	if m == nil {
		return
	}
	m.TokenAcquisitions.WithLabelValues(path, outcome).Inc()
}

// RecordAPIRequest records one client operation.
func (m *Metrics) RecordAPIRequest(operation, source, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(operation, source, outcome).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCallbackRequest records one redirect listener request.
func (m *Metrics) RecordCallbackRequest(endpoint, status string) {
	if m == nil {
		return
	}
	m.CallbackRequests.WithLabelValues(endpoint, status).Inc()
}
