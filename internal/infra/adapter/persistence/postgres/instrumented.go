package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/observability/metrics"
)

// InstrumentedDB records latency and errors of every statement run through
// the wrapped DB.
type InstrumentedDB struct {
	db DB
}

// Instrument wraps db.
func Instrument(db DB) *InstrumentedDB {
	return &InstrumentedDB{db: db}
}

func (i *InstrumentedDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.db.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery(operation(query), time.Since(start), err)
	return rows, err
}

// QueryRowContext defers its error to Scan, so only latency is recorded.
func (i *InstrumentedDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := i.db.QueryRowContext(ctx, query, args...)
	metrics.RecordDBQuery(operation(query), time.Since(start), nil)
	return row
}

func (i *InstrumentedDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := i.db.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery(operation(query), time.Since(start), err)
	return res, err
}

func (i *InstrumentedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := i.db.BeginTx(ctx, opts)
	metrics.RecordDBQuery("begin", time.Since(start), err)
	return tx, err
}

// operation maps a statement to a bounded label: its leading verb.
func operation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "other"
	}
	switch v := strings.ToLower(fields[0]); v {
	case "select", "insert", "update", "delete", "with":
		return v
	default:
		return "other"
	}
}
