package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics using Prometheus collectors.
//
// Collectors are registered on the registry passed to NewPrometheusMetrics,
// which keeps tests isolated from the global default registry.
type PrometheusMetrics struct {
	// requestsTotal counts checks by prefix and status ("allowed" or "denied").
	requestsTotal *prometheus.CounterVec

	// checkDuration observes store round trips by prefix.
	// Buckets target sub-millisecond memory checks and few-millisecond Redis checks.
	checkDuration *prometheus.HistogramVec

	sweptTotal  prometheus.Counter
	storeErrors *prometheus.CounterVec
	overflows   *prometheus.CounterVec
}

// NewPrometheusMetrics creates the rate limit collectors and registers them on reg.
// A nil reg uses a fresh private registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &PrometheusMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_rate_limit_requests_total",
				Help: "Total rate limit checks by prefix and status",
			},
			[]string{"prefix", "status"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_rate_limit_check_duration_seconds",
				Help:    "Duration of rate limit store round trips",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
			[]string{"prefix"},
		),
		sweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portfolio_rate_limit_swept_total",
				Help: "Total finished windows removed by the sweeper",
			},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_rate_limit_store_errors_total",
				Help: "Total failed calls against a rate limit store",
			},
			[]string{"store"},
		),
		overflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_rate_limit_overflow_total",
				Help: "Total new keys denied because the key table was full",
			},
			[]string{"store"},
		),
	}

	reg.MustRegister(m.requestsTotal, m.checkDuration, m.sweptTotal, m.storeErrors, m.overflows)
	return m
}

// RecordAllowed implements Metrics.
func (m *PrometheusMetrics) RecordAllowed(prefix string) {
	m.requestsTotal.WithLabelValues(prefix, "allowed").Inc()
}

// RecordDenied implements Metrics.
func (m *PrometheusMetrics) RecordDenied(prefix string) {
	m.requestsTotal.WithLabelValues(prefix, "denied").Inc()
}

// RecordCheckDuration implements Metrics.
func (m *PrometheusMetrics) RecordCheckDuration(prefix string, duration time.Duration) {
	m.checkDuration.WithLabelValues(prefix).Observe(duration.Seconds())
}

// RecordSwept implements Metrics.
func (m *PrometheusMetrics) RecordSwept(count int) {
	m.sweptTotal.Add(float64(count))
}

// RecordStoreError implements Metrics.
func (m *PrometheusMetrics) RecordStoreError(store string) {
	m.storeErrors.WithLabelValues(store).Inc()
}

// RecordOverflow implements Metrics.
func (m *PrometheusMetrics) RecordOverflow(store string) {
	m.overflows.WithLabelValues(store).Inc()
}
