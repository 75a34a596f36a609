package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Limiter applies fixed-window policies on top of a Store.
//
// A Limiter is an ordinary value: construct one per process (or per test)
// and pass it to whatever needs admission control.
type Limiter struct {
	store   Store
	metrics Metrics
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(l *Limiter) {
		if m != nil {
			l.metrics = m
		}
	}
}

// NewLimiter creates a Limiter over store.
func NewLimiter(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:   store,
		metrics: NewNoOpMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewMemoryLimiter creates a Limiter over a fresh unbounded MemoryStore.
func NewMemoryLimiter(clock Clock) *Limiter {
	return NewLimiter(NewMemoryStore(MemoryStoreConfig{Clock: clock}))
}

// Check registers one attempt by identifier under cfg.
//
// Zero-valued cfg fields take their defaults. A rejection is reported
// through Result.Success, never as an error; errors mean the policy is
// invalid or the store failed.
func (l *Limiter) Check(ctx context.Context, identifier string, cfg Config) (Result, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid rate limit config: %w", err)
	}

	key := Key(cfg.Prefix, identifier)

	start := time.Now()
	result, err := l.store.Hit(ctx, key, cfg.Window, cfg.MaxAttempts)
	l.metrics.RecordCheckDuration(cfg.Prefix, time.Since(start))
	if err != nil {
		return Result{}, err
	}

	if result.Success {
		l.metrics.RecordAllowed(cfg.Prefix)
	} else {
		l.metrics.RecordDenied(cfg.Prefix)
	}
	return result, nil
}

// Sweep removes finished windows from the store.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	removed, err := l.store.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		l.metrics.RecordSwept(removed)
		slog.Debug("rate limit sweep", slog.Int("removed", removed))
	}
	return removed, nil
}
