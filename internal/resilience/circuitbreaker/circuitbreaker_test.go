package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

func testConfig(minRequests uint32, threshold float64, timeout time.Duration) Config {
	return Config{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          timeout,
		FailureThreshold: threshold,
		MinRequests:      minRequests,
	}
}

func fail() (interface{}, error) { return nil, errBackend }
func ok() (interface{}, error)   { return "ok", nil }

func TestConfig_ReadyToTrip(t *testing.T) {
	cfg := testConfig(4, 0.5, time.Minute)

	tests := []struct {
		name   string
		counts gobreaker.Counts
		want   bool
	}{
		{name: "no calls", counts: gobreaker.Counts{}, want: false},
		{name: "below min requests", counts: gobreaker.Counts{Requests: 3, TotalFailures: 3}, want: false},
		{name: "ratio below threshold", counts: gobreaker.Counts{Requests: 5, TotalFailures: 2}, want: false},
		{name: "ratio at threshold", counts: gobreaker.Counts{Requests: 4, TotalFailures: 2}, want: true},
		{name: "all failed", counts: gobreaker.Counts{Requests: 6, TotalFailures: 6}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.readyToTrip(tt.counts))
		})
	}
}

func TestCircuitBreaker_PassesResults(t *testing.T) {
	cb := New(testConfig(5, 0.6, time.Minute))
	assert.Equal(t, "test", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	got, err := cb.Execute(ok)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = cb.Execute(fail)
	assert.ErrorIs(t, err, errBackend)
	assert.False(t, cb.IsOpen(), "one failure stays below MinRequests")
}

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	var transitions []string
	cb := New(testConfig(3, 0.6, 50*time.Millisecond), func(name string, from, to gobreaker.State) {
		assert.Equal(t, "test", name)
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(fail)
	}
	require.True(t, cb.IsOpen())

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called, "open breaker must not call through")

	time.Sleep(80 * time.Millisecond)
	_, err = cb.Execute(ok)
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	cfg := testConfig(2, 1.0, time.Minute)
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errBackend) }
	cb := New(cfg)

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(fail)
		assert.ErrorIs(t, err, errBackend)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State(), "errors classified as success never trip")
}

func TestRedisConfig(t *testing.T) {
	cfg := RedisConfig()
	assert.Equal(t, "redis-ratelimit", cfg.Name)
	assert.Equal(t, uint32(3), cfg.MinRequests)
	assert.Less(t, cfg.Timeout, DBConfig().Timeout, "redis probes sooner than the database")
}
