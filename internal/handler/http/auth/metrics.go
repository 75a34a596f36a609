package auth

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loginAttemptsTotal counts login attempts by result.
	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total login attempts by result",
		},
		[]string{"result"}, // success | invalid_credentials | bad_request | error
	)

	// loginDuration tracks how long a login takes, password hashing included.
	loginDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_login_duration_seconds",
			Help:    "Login duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
	)

	// sessionValidationsTotal counts session cookie checks by result.
	sessionValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_validations_total",
			Help: "Session cookie validations by result",
		},
		[]string{"result"}, // valid | missing | invalid | error
	)

	// gateRejectionsTotal counts refused requests by gate and status.
	gateRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_gate_rejections_total",
			Help: "Requests refused by an admission gate",
		},
		[]string{"gate", "status"},
	)
)

// RecordLoginAttempt records the result of a login.
func RecordLoginAttempt(result string) {
	loginAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordLoginDuration records login duration.
func RecordLoginDuration(durationSeconds float64) {
	loginDuration.Observe(durationSeconds)
}

// RecordGateRejection records a request refused by gate with status.
func RecordGateRejection(gate string, status int) {
	gateRejectionsTotal.WithLabelValues(gate, strconv.Itoa(status)).Inc()
}

func recordSessionValidation(result string) {
	sessionValidationsTotal.WithLabelValues(result).Inc()
}
