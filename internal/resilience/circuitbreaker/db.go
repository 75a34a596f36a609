package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sony/gobreaker"
)

// DBCircuitBreaker guards a *sql.DB. It satisfies the repositories' DB
// interface, so they run against either one unchanged.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens the database breaker once at least five calls within a
// minute have all failed, and probes again after 30 seconds.
func DBConfig() Config {
	return Config{
		Name:             "database",
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
		IsSuccessful:     isHealthyDBError,
	}
}

// isHealthyDBError treats errors that prove the database answered as
// successes: caller cancellation, and constraint or data errors raised by
// PostgreSQL itself (SQLSTATE classes 22 and 23).
func isHealthyDBError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "22", "23":
			return true
		}
	}
	return false
}

// NewDBCircuitBreaker protects db with DBConfig.
func NewDBCircuitBreaker(db *sql.DB, observers ...StateObserver) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig(), observers...)
}

// NewDBCircuitBreakerWithConfig protects db with cfg.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config, observers ...StateObserver) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg, observers...), db: db}
}

// guarded runs fn through cb and restores its result type.
func guarded[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// QueryContext runs a query unless the circuit is open.
func (dcb *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return guarded(dcb.cb, func() (*sql.Rows, error) { return dcb.db.QueryContext(ctx, query, args...) })
}

// ExecContext runs a statement unless the circuit is open.
func (dcb *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return guarded(dcb.cb, func() (sql.Result, error) { return dcb.db.ExecContext(ctx, query, args...) })
}

// QueryRowContext is not protected: *sql.Row defers its error to Scan, so
// the breaker never sees the outcome. Single-row reads still fail fast once
// the list and write paths have opened the circuit, because the pool is the
// same.
func (dcb *DBCircuitBreaker) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return dcb.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction unless the circuit is open. Statements
// inside the transaction run on the *sql.Tx directly.
func (dcb *DBCircuitBreaker) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return guarded(dcb.cb, func() (*sql.Tx, error) { return dcb.db.BeginTx(ctx, opts) })
}

// PingContext checks the database through the breaker. The readiness probe
// uses it so an open circuit reports not ready.
func (dcb *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := dcb.cb.Execute(func() (interface{}, error) {
		return nil, dcb.db.PingContext(ctx)
	})
	return err
}

// State returns the breaker state.
func (dcb *DBCircuitBreaker) State() gobreaker.State { return dcb.cb.State() }

// IsOpen reports whether database calls are currently refused.
func (dcb *DBCircuitBreaker) IsOpen() bool { return dcb.cb.IsOpen() }

// DB returns the underlying database connection for migrations, which run
// before traffic is served.
func (dcb *DBCircuitBreaker) DB() *sql.DB {
	return dcb.db
}
