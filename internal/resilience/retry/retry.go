// Package retry retries start-up connections with exponential backoff.
// The API uses it while PostgreSQL and Redis may still be booting.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Config bounds a retry loop.
type Config struct {
	// Name labels log lines, e.g. "postgres".
	Name string

	MaxAttempts  int // first call included
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// JitterFraction adds up to this share of the delay at random, 0 to 1.
	JitterFraction float64
}

// DBConfig waits up to roughly half a minute for PostgreSQL to accept
// connections.
func DBConfig() Config {
	return Config{
		Name:           "postgres",
		MaxAttempts:    6,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       8 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.1,
	}
}

// RedisConfig gives up sooner than DBConfig: without Redis the API still
// serves traffic on the local rate-limit store.
func RedisConfig() Config {
	return Config{
		Name:           "redis",
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.1,
	}
}

// backoff returns the wait before retry number n (1-based), capped at
// MaxDelay before jitter is added.
func (c Config) backoff(n int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < n; i++ {
		d *= c.Multiplier
		if d >= float64(c.MaxDelay) {
			d = float64(c.MaxDelay)
			break
		}
	}
	return addJitter(time.Duration(d), c.JitterFraction)
}

// WithBackoff calls fn until it succeeds, returns a non-retryable error,
// MaxAttempts is reached, or ctx is done.
func WithBackoff(ctx context.Context, cfg Config, fn func() error) error {
	logger := slog.Default().With(slog.String("target", cfg.Name))

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				logger.Info("connected after retry", slog.Int("attempt", attempt))
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= cfg.MaxAttempts {
			return fmt.Errorf("%s: gave up after %d attempts: %w", cfg.Name, attempt, err)
		}

		wait := cfg.backoff(attempt)
		logger.Warn("attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: retry aborted: %w", cfg.Name, ctx.Err())
		}
	}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying, such as a malformed DSN.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable reports whether err looks like a transient connection failure.
func IsRetryable(err error) bool {
	var perm *permanentError
	switch {
	case err == nil, errors.As(err, &perm):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ETIMEDOUT), errors.Is(err, syscall.ENETUNREACH):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// 57P03: the server is starting up.
	var connectErr *pgconn.ConnectError
	var pgErr *pgconn.PgError
	if errors.As(err, &connectErr) || (errors.As(err, &pgErr) && pgErr.Code == "57P03") {
		return true
	}
	return pgconn.SafeToRetry(err)
}

func addJitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- jitter does not need cryptographic randomness.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}
