package ratelimit

import "time"

// NoOpMetrics discards every event. It is the default for a Limiter.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics instance.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (m *NoOpMetrics) RecordAllowed(string)                      {}
func (m *NoOpMetrics) RecordDenied(string)                       {}
func (m *NoOpMetrics) RecordCheckDuration(string, time.Duration) {}
func (m *NoOpMetrics) RecordSwept(int)                           {}
func (m *NoOpMetrics) RecordStoreError(string)                   {}
func (m *NoOpMetrics) RecordOverflow(string)                     {}

var (
	_ Metrics = (*NoOpMetrics)(nil)
	_ Metrics = (*PrometheusMetrics)(nil)
)
