package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryStoreName labels MemoryStore events in Metrics.
const memoryStoreName = "memory"

// MemoryStore is a thread-safe in-process implementation of Store.
//
// Each composite key owns one Entry. Entries are replaced when a request
// arrives after their window ended and deleted by Sweep. When MaxKeys is set
// and the table is full, a new key first reclaims expired entries. If every
// entry is still live the new key is denied for one window; live counters
// are never dropped.
//
// Counters are not shared between processes; use RedisStore for that.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
	maxKeys int
	clock   Clock
	metrics Metrics
}

// MemoryStoreConfig holds configuration for MemoryStore.
type MemoryStoreConfig struct {
	// MaxKeys bounds the number of tracked keys. Zero means unbounded.
	MaxKeys int

	// Clock provides time operations for testing.
	// Default: SystemClock
	Clock Clock

	// Metrics receives overflow events.
	// Default: NoOpMetrics
	Metrics Metrics
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(config MemoryStoreConfig) *MemoryStore {
	if config.MaxKeys < 0 {
		config.MaxKeys = 0
	}
	if config.Clock == nil {
		config.Clock = &SystemClock{}
	}
	if config.Metrics == nil {
		config.Metrics = NewNoOpMetrics()
	}

	return &MemoryStore{
		entries: make(map[string]*Entry),
		maxKeys: config.MaxKeys,
		clock:   config.Clock,
		metrics: config.Metrics,
	}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration, max int) (Result, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.expired(now) {
		if !ok && !s.reserveLocked(now) {
			s.metrics.RecordOverflow(memoryStoreName)
			return denied(max, now.Add(window)), nil
		}
		entry = &Entry{Count: 1, ResetTime: now.Add(window)}
		s.entries[key] = entry
		return admitted(max, 1, entry.ResetTime), nil
	}

	if entry.Count >= max {
		return denied(max, entry.ResetTime), nil
	}

	entry.Count++
	return admitted(max, entry.Count, entry.ResetTime), nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(now), nil
}

func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// reserveLocked reports whether a new key fits under MaxKeys, reclaiming
// expired entries when the table is full. Caller must hold s.mu.
func (s *MemoryStore) reserveLocked(now time.Time) bool {
	if s.maxKeys == 0 || len(s.entries) < s.maxKeys {
		return true
	}
	s.sweepLocked(now)
	return len(s.entries) < s.maxKeys
}

// Len returns the number of tracked keys, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
