package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// FallbackStore sends every call to a primary store through a circuit
// breaker and answers from a local fallback store when the primary fails or
// the breaker is open.
//
// While degraded, limits are enforced per instance instead of globally.
// Admission never fails open.
type FallbackStore struct {
	primary  Store
	fallback Store
	breaker  Breaker
	metrics  Metrics
	name     string
}

// NewFallbackStore wires primary behind breaker with fallback as the backup.
// A nil metrics uses NoOpMetrics.
func NewFallbackStore(name string, primary, fallback Store, breaker Breaker, metrics Metrics) *FallbackStore {
	if metrics == nil {
		metrics = NewNoOpMetrics()
	}
	return &FallbackStore{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		metrics:  metrics,
		name:     name,
	}
}

// Hit implements Store.
func (s *FallbackStore) Hit(ctx context.Context, key string, window time.Duration, max int) (Result, error) {
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.primary.Hit(ctx, key, window, max)
	})
	if err == nil {
		return out.(Result), nil
	}

	s.metrics.RecordStoreError(s.name)
	slog.Warn("rate limit store unavailable, using local fallback",
		slog.String("store", s.name),
		slog.String("key", key),
		slog.Any("error", err))

	return s.fallback.Hit(ctx, key, window, max)
}

// Sweep implements Store. Only the fallback holds entries that need sweeping.
func (s *FallbackStore) Sweep(ctx context.Context) (int, error) {
	return s.fallback.Sweep(ctx)
}

// Ping checks the primary store when it supports pings.
func (s *FallbackStore) Ping(ctx context.Context) error {
	if p, ok := s.primary.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Len returns the number of keys held locally by the fallback.
func (s *FallbackStore) Len() int {
	if c, ok := s.fallback.(interface{ Len() int }); ok {
		return c.Len()
	}
	return 0
}
