package metrics

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("exec"))

	RecordDBQuery("exec", 3*time.Millisecond, nil)
	RecordDBQuery("exec", 5*time.Millisecond, errors.New("deadlock detected"))

	assert.Equal(t, before+1, testutil.ToFloat64(DBQueryErrors.WithLabelValues("exec")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DBQueryDuration), 1)
}

func TestUpdateDBConnectionStats(t *testing.T) {
	UpdateDBConnectionStats(sql.DBStats{OpenConnections: 7, InUse: 3, Idle: 4})

	assert.Equal(t, 7.0, testutil.ToFloat64(DBConnections.WithLabelValues("open")))
	assert.Equal(t, 3.0, testutil.ToFloat64(DBConnections.WithLabelValues("in_use")))
	assert.Equal(t, 4.0, testutil.ToFloat64(DBConnections.WithLabelValues("idle")))
}

func TestObserveBreaker(t *testing.T) {
	before := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("redis", "closed", "open"))

	ObserveBreaker("redis", gobreaker.StateClosed, gobreaker.StateOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("redis")))
	assert.Equal(t, before+1, testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("redis", "closed", "open")))

	ObserveBreaker("redis", gobreaker.StateOpen, gobreaker.StateHalfOpen)
	assert.Equal(t, 1.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("redis")))
}

func TestRecordSessionPurge(t *testing.T) {
	okBefore := testutil.ToFloat64(SessionPurgeRuns.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(SessionPurgeRuns.WithLabelValues("error"))
	purgedBefore := testutil.ToFloat64(SessionsPurged)

	RecordSessionPurge(12, nil)
	RecordSessionPurge(0, errors.New("timeout"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(SessionPurgeRuns.WithLabelValues("success")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(SessionPurgeRuns.WithLabelValues("error")))
	assert.Equal(t, purgedBefore+12, testutil.ToFloat64(SessionsPurged))
}
