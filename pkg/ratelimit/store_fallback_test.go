package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
)

// passthroughBreaker runs every call, like a closed circuit.
type passthroughBreaker struct{ calls int }

func (b *passthroughBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	b.calls++
	return fn()
}

// openBreaker rejects every call, like an open circuit.
type openBreaker struct{}

func (openBreaker) Execute(func() (interface{}, error)) (interface{}, error) {
	return nil, gobreaker.ErrOpenState
}

func TestFallbackStore_UsesPrimaryWhenHealthy(t *testing.T) {
	clock := NewMockClock(epoch)
	primary := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	fallback := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	breaker := &passthroughBreaker{}

	store := NewFallbackStore("redis", primary, fallback, breaker, nil)

	res, err := store.Hit(context.Background(), "k", time.Minute, 3)
	if err != nil {
		t.Fatalf("Hit() error = %v", err)
	}
	if !res.Success || res.Remaining != 2 {
		t.Errorf("Hit() = %+v, want success with 2 remaining", res)
	}
	if primary.Len() != 1 || fallback.Len() != 0 {
		t.Errorf("primary.Len() = %d, fallback.Len() = %d; want 1, 0", primary.Len(), fallback.Len())
	}
	if breaker.calls != 1 {
		t.Errorf("breaker calls = %d, want 1", breaker.calls)
	}
}

func TestFallbackStore_FallsBackOnError(t *testing.T) {
	clock := NewMockClock(epoch)
	fallback := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)

	store := NewFallbackStore("redis", &failingStore{err: errors.New("connection refused")}, fallback, &passthroughBreaker{}, metrics)

	for i := 0; i < 2; i++ {
		if res, err := store.Hit(context.Background(), "k", time.Minute, 2); err != nil || !res.Success {
			t.Fatalf("Hit() = %+v, %v; want admitted by fallback", res, err)
		}
	}
	res, _ := store.Hit(context.Background(), "k", time.Minute, 2)
	if res.Success {
		t.Error("fallback must keep enforcing the limit")
	}

	if got := testutil.ToFloat64(metrics.storeErrors.WithLabelValues("redis")); got != 3 {
		t.Errorf("store errors = %v, want 3", got)
	}
}

func TestFallbackStore_OpenCircuitSkipsPrimary(t *testing.T) {
	primary := &failingStore{err: errors.New("must not be called")}
	fallback := NewMemoryStore(MemoryStoreConfig{Clock: NewMockClock(epoch)})

	store := NewFallbackStore("redis", primary, fallback, openBreaker{}, nil)

	res, err := store.Hit(context.Background(), "k", time.Minute, 1)
	if err != nil || !res.Success {
		t.Errorf("Hit() = %+v, %v; want admitted by fallback", res, err)
	}
	if fallback.Len() != 1 {
		t.Errorf("fallback.Len() = %d, want 1", fallback.Len())
	}
}

func TestFallbackStore_SweepsFallback(t *testing.T) {
	clock := NewMockClock(epoch)
	fallback := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	_, _ = fallback.Hit(context.Background(), "k", time.Minute, 1)

	store := NewFallbackStore("redis", &failingStore{}, fallback, openBreaker{}, nil)
	clock.Advance(2 * time.Minute)

	removed, err := store.Sweep(context.Background())
	if err != nil || removed != 1 {
		t.Errorf("Sweep() = %d, %v; want 1, nil", removed, err)
	}
}

type pingingStore struct {
	failingStore
	pingErr error
}

func (s *pingingStore) Ping(context.Context) error { return s.pingErr }

func TestFallbackStore_PingAndLen(t *testing.T) {
	fallback := NewMemoryStore(MemoryStoreConfig{Clock: NewMockClock(epoch)})
	_, _ = fallback.Hit(context.Background(), "a", time.Minute, 1)
	_, _ = fallback.Hit(context.Background(), "b", time.Minute, 1)

	down := errors.New("dial tcp: connection refused")
	store := NewFallbackStore("redis", &pingingStore{pingErr: down}, fallback, openBreaker{}, nil)
	if err := store.Ping(context.Background()); !errors.Is(err, down) {
		t.Errorf("Ping() = %v, want %v", err, down)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}

	plain := NewFallbackStore("memory", &failingStore{}, &failingStore{}, openBreaker{}, nil)
	if err := plain.Ping(context.Background()); err != nil {
		t.Errorf("Ping() without pinger = %v, want nil", err)
	}
	if plain.Len() != 0 {
		t.Errorf("Len() without counter = %d, want 0", plain.Len())
	}
}
