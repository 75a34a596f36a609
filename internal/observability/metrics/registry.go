// Package metrics holds the Prometheus metrics that are not tied to one HTTP
// package: database calls, circuit breakers and background jobs.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	// DBQueryDuration measures database round trips by operation
	// (query, query_row, exec, begin).
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBQueryErrors counts failed database round trips by operation.
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database calls",
		},
		[]string{"operation"},
	)

	// DBConnections tracks pool connections by state (in_use, idle, open).
	DBConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database pool connections by state",
		},
		[]string{"state"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// SessionPurgeRuns counts scheduled purge runs by result.
	SessionPurgeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_purge_runs_total",
			Help: "Expired session purge runs by result",
		},
		[]string{"result"}, // success | error
	)

	// SessionsPurged counts expired sessions deleted by the purge job.
	SessionsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_purged_total",
			Help: "Expired sessions deleted by the purge job",
		},
	)
)

// RecordDBQuery records one database call.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateDBConnectionStats copies pool statistics into DBConnections.
func UpdateDBConnectionStats(stats sql.DBStats) {
	DBConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	DBConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	DBConnections.WithLabelValues("idle").Set(float64(stats.Idle))
}

// ObserveBreaker has the signature of circuitbreaker.StateObserver and
// exports every transition.
func ObserveBreaker(name string, from, to gobreaker.State) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(to))
	CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
}

// RecordSessionPurge records one run of the expired session purge.
func RecordSessionPurge(removed int64, err error) {
	if err != nil {
		SessionPurgeRuns.WithLabelValues("error").Inc()
		return
	}
	SessionPurgeRuns.WithLabelValues("success").Inc()
	SessionsPurged.Add(float64(removed))
}
