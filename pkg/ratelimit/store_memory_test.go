package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// MockClock implements Clock interface for testing
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

var epoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewMemoryStore(t *testing.T) {
	tests := []struct {
		name        string
		config      MemoryStoreConfig
		wantMaxKeys int
	}{
		{name: "unbounded by default", config: MemoryStoreConfig{}, wantMaxKeys: 0},
		{name: "bounded", config: MemoryStoreConfig{MaxKeys: 100}, wantMaxKeys: 100},
		{name: "negative treated as unbounded", config: MemoryStoreConfig{MaxKeys: -5}, wantMaxKeys: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore(tt.config)
			if store.maxKeys != tt.wantMaxKeys {
				t.Errorf("maxKeys = %d, want %d", store.maxKeys, tt.wantMaxKeys)
			}
			if store.clock == nil {
				t.Error("clock should default to SystemClock")
			}
			if store.Len() != 0 {
				t.Errorf("Len() = %d, want 0", store.Len())
			}
		})
	}
}

func TestMemoryStore_Hit_FixedWindow(t *testing.T) {
	clock := NewMockClock(epoch)
	store := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	ctx := context.Background()

	first, err := store.Hit(ctx, "login:a", time.Minute, 2)
	if err != nil {
		t.Fatalf("Hit() error = %v", err)
	}
	if !first.Success || first.Remaining != 1 {
		t.Errorf("first Hit() = %+v, want success with 1 remaining", first)
	}
	if want := epoch.Add(time.Minute); !first.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", first.ResetTime, want)
	}

	clock.Advance(10 * time.Second)
	second, _ := store.Hit(ctx, "login:a", time.Minute, 2)
	if !second.Success || second.Remaining != 0 {
		t.Errorf("second Hit() = %+v, want success with 0 remaining", second)
	}
	if !second.ResetTime.Equal(first.ResetTime) {
		t.Errorf("window moved: %v -> %v", first.ResetTime, second.ResetTime)
	}

	third, _ := store.Hit(ctx, "login:a", time.Minute, 2)
	if third.Success || third.Remaining != 0 {
		t.Errorf("third Hit() = %+v, want denied", third)
	}

	entry, ok := store.lookup("login:a")
	if !ok {
		t.Fatal("entry missing after hits")
	}
	if entry.Count != 2 {
		t.Errorf("Count = %d, want 2 (rejections must not increment)", entry.Count)
	}
}

func TestMemoryStore_Hit_BoundaryIsInclusive(t *testing.T) {
	clock := NewMockClock(epoch)
	store := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	ctx := context.Background()

	_, _ = store.Hit(ctx, "k", time.Minute, 1)

	// Exactly at ResetTime the window is still open.
	clock.Advance(time.Minute)
	res, _ := store.Hit(ctx, "k", time.Minute, 1)
	if res.Success {
		t.Error("Hit() at ResetTime should still be denied")
	}

	clock.Advance(time.Millisecond)
	res, _ = store.Hit(ctx, "k", time.Minute, 1)
	if !res.Success {
		t.Error("Hit() after ResetTime should start a new window")
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := NewMockClock(epoch)
	store := NewMemoryStore(MemoryStoreConfig{Clock: clock})
	ctx := context.Background()

	_, _ = store.Hit(ctx, "short", time.Minute, 5)
	_, _ = store.Hit(ctx, "long", time.Hour, 5)

	clock.Advance(2 * time.Minute)

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed = %d, want 1", removed)
	}
	if _, ok := store.lookup("short"); ok {
		t.Error("expired entry should be swept")
	}
	if _, ok := store.lookup("long"); !ok {
		t.Error("live entry should survive the sweep")
	}
}

func TestMemoryStore_MaxKeys(t *testing.T) {
	clock := NewMockClock(epoch)
	reg := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(reg)
	store := NewMemoryStore(MemoryStoreConfig{MaxKeys: 2, Clock: clock, Metrics: metrics})
	ctx := context.Background()

	_, _ = store.Hit(ctx, "a", time.Minute, 5)
	clock.Advance(time.Second)
	_, _ = store.Hit(ctx, "b", time.Minute, 5)
	clock.Advance(time.Second)

	res, err := store.Hit(ctx, "c", time.Minute, 5)
	if err != nil {
		t.Fatalf("Hit() error = %v", err)
	}
	if res.Success || res.Remaining != 0 {
		t.Errorf("Hit() on a full table = %+v, want denied", res)
	}
	if want := clock.Now().Add(time.Minute); !res.ResetTime.Equal(want) {
		t.Errorf("ResetTime = %v, want %v", res.ResetTime, want)
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
	if _, ok := store.lookup("a"); !ok {
		t.Error("live entries must never be dropped")
	}
	if _, ok := store.lookup("c"); ok {
		t.Error("refused key must not be tracked")
	}
	if got := testutil.ToFloat64(metrics.overflows.WithLabelValues("memory")); got != 1 {
		t.Errorf("overflows = %v, want 1", got)
	}

	// Known keys keep counting while the table is full.
	if res, _ := store.Hit(ctx, "a", time.Minute, 5); !res.Success || res.Remaining != 3 {
		t.Errorf("Hit(a) = %+v, want admitted with 3 remaining", res)
	}

	// Expired entries are reclaimed for new keys.
	clock.Advance(2 * time.Minute)
	if res, _ := store.Hit(ctx, "d", time.Minute, 5); !res.Success {
		t.Errorf("Hit(d) = %+v, want admitted after expired entries are reclaimed", res)
	}
	if got := testutil.ToFloat64(metrics.overflows.WithLabelValues("memory")); got != 1 {
		t.Errorf("overflows = %v, want 1", got)
	}
}

func TestMemoryStore_MaxKeys_RotatingKeysCannotResetBudget(t *testing.T) {
	clock := NewMockClock(epoch)
	store := NewMemoryStore(MemoryStoreConfig{MaxKeys: 2, Clock: clock})
	limiter := NewLimiter(store)
	ctx := context.Background()
	cfg := Config{Window: 15 * time.Minute, MaxAttempts: 5, Prefix: "login"}

	admitted := 0
	for i := 0; i < 5; i++ {
		if res, _ := limiter.Check(ctx, "attacker", cfg); res.Success {
			admitted++
		}
	}
	for i := 0; i < 20; i++ {
		clock.Advance(time.Second)
		_, _ = limiter.Check(ctx, fmt.Sprintf("spoof-%d", i), cfg)
		if res, _ := limiter.Check(ctx, "attacker", cfg); res.Success {
			admitted++
		}
	}

	if admitted != cfg.MaxAttempts {
		t.Errorf("attacker admitted %d times in one window, want %d", admitted, cfg.MaxAttempts)
	}
}

// lookup returns a copy of the entry stored under key.
func (s *MemoryStore) lookup(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

func TestMemoryStore_ConcurrentHits(t *testing.T) {
	store := NewMemoryStore(MemoryStoreConfig{Clock: NewMockClock(epoch)})
	ctx := context.Background()

	const (
		workers = 50
		max     = 10
	)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := store.Hit(ctx, "shared", time.Minute, max)
			if err != nil {
				t.Errorf("Hit() error = %v", err)
				return
			}
			if res.Success {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != max {
		t.Errorf("allowed = %d, want exactly %d", allowed, max)
	}
}
