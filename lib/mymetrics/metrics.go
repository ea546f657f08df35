package mymetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts operation outcomes and latencies on a private registry so that each service (and each
// test) can create its own.
type Metrics struct {
	registry  *prometheus.Registry
	outcomes  *prometheus.CounterVec
	latencyMS *prometheus.HistogramVec
}

func New(service string) *Metrics {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canpayshop",
		Subsystem: service,
		Name:      "operations_total",
		Help:      "Total number of operations by outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "canpayshop",
		Subsystem: service,
		Name:      "operation_duration_ms",
		Help:      "Operation latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"operation"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(outcomes, latency)

	return &Metrics{
		registry:  registry,
		outcomes:  outcomes,
		latencyMS: latency,
	}
}

func (m *Metrics) Observe(operation string, outcome string, started time.Time) {
	m.outcomes.WithLabelValues(operation, outcome).Inc()
	m.latencyMS.WithLabelValues(operation).Observe(float64(time.Since(started).Milliseconds()))
}

func (m *Metrics) Count(operation string, outcome string) float64 {
	counter, err := m.outcomes.GetMetricWithLabelValues(operation, outcome)
	if err != nil {
		return 0
	}
	return testValue(counter)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
