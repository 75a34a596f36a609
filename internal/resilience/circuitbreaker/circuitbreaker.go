// Package circuitbreaker wraps github.com/sony/gobreaker for the API's
// backing services so a failing dependency fails fast instead of piling up
// blocked requests.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string

	// MaxRequests is how many probe calls the half-open state lets through.
	MaxRequests uint32
	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// The breaker trips once at least MinRequests calls were counted and
	// the failure ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful classifies errors returned by the protected call.
	// Nil counts every non-nil error as a failure.
	IsSuccessful func(err error) bool
}

// RedisConfig is the breaker in front of the shared rate-limit store. It
// trips after a handful of errors and probes again within seconds, since
// the in-memory fallback only covers the local replica.
func RedisConfig() Config {
	return Config{
		Name:             "redis-ratelimit",
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

// readyToTrip reports whether counts cross the failure ratio of cfg.
func (cfg Config) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests == 0 || counts.Requests < cfg.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
}

// StateObserver is notified on every state transition.
type StateObserver func(name string, from, to gobreaker.State)

// CircuitBreaker is a named gobreaker.CircuitBreaker whose transitions are
// logged and fanned out to observers.
type CircuitBreaker struct {
	name    string
	breaker *gobreaker.CircuitBreaker
}

// New builds a breaker from cfg. Observers run after the transition is
// logged, in order.
func New(cfg Config, observers ...StateObserver) *CircuitBreaker {
	onChange := func(name string, from, to gobreaker.State) {
		slog.Warn("circuit breaker state changed",
			slog.String("circuit", name),
			slog.String("from", from.String()),
			slog.String("to", to.String()))
		for _, observe := range observers {
			observe(name, from, to)
		}
	}

	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:          cfg.Name,
			MaxRequests:   cfg.MaxRequests,
			Interval:      cfg.Interval,
			Timeout:       cfg.Timeout,
			ReadyToTrip:   cfg.readyToTrip,
			IsSuccessful:  cfg.IsSuccessful,
			OnStateChange: onChange,
		}),
	}
}

// Execute runs fn unless the breaker is open, in which case it returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

// Name returns the configured name.
func (cb *CircuitBreaker) Name() string { return cb.name }

// IsOpen reports whether calls are currently refused.
func (cb *CircuitBreaker) IsOpen() bool { return cb.State() == gobreaker.StateOpen }
