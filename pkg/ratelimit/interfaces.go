// Package ratelimit provides framework-agnostic fixed-window rate limiting.
//
// A Limiter counts admitted operations per composite key ("prefix:identifier")
// inside a fixed window that starts at the first admitted call. Counters live
// in a pluggable Store: an in-process table for single instances, or Redis
// when several instances must share one budget.
package ratelimit

import (
	"context"
	"time"
)

// Store holds fixed-window counters.
//
// Implementations must perform the whole read-modify-write of Hit atomically
// for a key. All methods must be safe for concurrent use.
type Store interface {
	// Hit registers one attempt against key and reports the outcome.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: Composite key, already namespaced by prefix
	//   - window: Length of a fresh window
	//   - max: Maximum admitted attempts per window
	//
	// A rejected attempt neither increments the counter nor extends the window.
	Hit(ctx context.Context, key string, window time.Duration, max int) (Result, error)

	// Sweep deletes every entry whose window has ended and returns how many
	// entries were removed.
	Sweep(ctx context.Context) (int, error)
}

// Breaker runs a call through a circuit breaker.
//
// internal/resilience/circuitbreaker.CircuitBreaker satisfies this interface.
type Breaker interface {
	Execute(fn func() (interface{}, error)) (interface{}, error)
}

// Metrics receives rate limiting events.
type Metrics interface {
	// RecordAllowed counts an admitted attempt for prefix.
	RecordAllowed(prefix string)

	// RecordDenied counts a rejected attempt for prefix.
	RecordDenied(prefix string)

	// RecordCheckDuration observes how long a store round trip took.
	RecordCheckDuration(prefix string, duration time.Duration)

	// RecordSwept counts entries removed by a sweep.
	RecordSwept(count int)

	// RecordStoreError counts a failed call against the named store.
	RecordStoreError(store string)

	// RecordOverflow counts a new key the named store refused because its
	// key table was full.
	RecordOverflow(store string)
}

// Clock provides time operations, allowing tests to control time.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}
