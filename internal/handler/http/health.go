// Package http holds the service-wide HTTP plumbing: health and readiness
// probes, Prometheus metrics, access logging, panic recovery, timeouts and
// input limits. Resource handlers live in the subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
)

// Check status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// BreakerState reports a circuit breaker's state.
// *circuitbreaker.CircuitBreaker and *circuitbreaker.DBCircuitBreaker satisfy it.
type BreakerState interface {
	State() gobreaker.State
}

// StorePinger is implemented by shared rate limit stores (Redis).
type StorePinger interface {
	Ping(ctx context.Context) error
}

// KeyCounter is implemented by in-process rate limit stores.
type KeyCounter interface {
	Len() int
}

// HealthHandler reports the health of the database, the rate limit store
// and the circuit breakers.
//
// Only the database decides overall health. A shared rate limit store that
// is down is degraded, not unhealthy, because admission falls back to the
// in-process table.
type HealthHandler struct {
	DB        *sql.DB
	Version   string
	RateLimit any // StorePinger and/or KeyCounter; nil skips the check
	Breakers  map[string]BreakerState
	Now       func() time.Time
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)

	db := h.checkDatabase(ctx)
	checks["database"] = db
	if h.RateLimit != nil {
		checks["rate_limit_store"] = h.checkRateLimitStore(ctx)
	}
	for name, b := range h.Breakers {
		checks["breaker_"+name] = checkBreaker(b)
	}

	status, code := StatusHealthy, http.StatusOK
	if db.Status == StatusUnhealthy {
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: StatusUnhealthy, Message: "not configured"}
	}
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Warn("health: database ping failed", slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: StatusUnhealthy, Message: "ping failed"}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// Zero means unlimited; no utilization to compute.
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: StatusDegraded, Message: "connection pool max connections not configured", Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{Status: StatusDegraded, Message: "connection pool utilization above 80%", Details: details}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func (h *HealthHandler) checkRateLimitStore(ctx context.Context) CheckStatus {
	details := map[string]any{}
	if c, ok := h.RateLimit.(KeyCounter); ok {
		details["active_keys"] = c.Len()
	}
	if p, ok := h.RateLimit.(StorePinger); ok {
		details["shared"] = true
		if err := p.Ping(ctx); err != nil {
			return CheckStatus{Status: StatusDegraded, Message: "shared store unreachable, using local fallback", Details: details}
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func checkBreaker(b BreakerState) CheckStatus {
	state := b.State()
	cs := CheckStatus{Status: StatusHealthy, Details: map[string]any{"state": state.String()}}
	if state != gobreaker.StateClosed {
		cs.Status = StatusDegraded
	}
	return cs
}

// ReadyHandler answers readiness probes: 200 once the database answers a ping.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness probes and always returns 200.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
