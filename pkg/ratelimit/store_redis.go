package ratelimit

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:embed fixed_window.lua
var fixedWindowScript string

// RedisStore keeps fixed-window counters in Redis so that every instance of
// the service shares one budget per key.
//
// Each key is a hash {count, reset} that expires just after its window ends,
// so Sweep has nothing to do.
type RedisStore struct {
	client    redis.UniversalClient
	script    *redis.Script
	keyPrefix string
	clock     Clock
}

// RedisStoreConfig holds configuration for RedisStore.
type RedisStoreConfig struct {
	// KeyPrefix is prepended to every composite key.
	// Default: "portfolio:ratelimit:"
	KeyPrefix string

	// Clock provides the window start time.
	// Default: SystemClock
	Clock Clock
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client redis.UniversalClient, config RedisStoreConfig) *RedisStore {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "portfolio:ratelimit:"
	}
	if config.Clock == nil {
		config.Clock = &SystemClock{}
	}

	return &RedisStore{
		client:    client,
		script:    redis.NewScript(fixedWindowScript),
		keyPrefix: config.KeyPrefix,
		clock:     config.Clock,
	}
}

// Hit implements Store. The whole decision runs inside one Lua script.
func (s *RedisStore) Hit(ctx context.Context, key string, window time.Duration, max int) (Result, error) {
	now := s.clock.Now()

	raw, err := s.script.Run(ctx, s.client, []string{s.keyPrefix + key},
		now.UnixMilli(),
		window.Milliseconds(),
		max,
	).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis hit %q: %w", key, err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 3 {
		return Result{}, errors.New("redis hit: unexpected script reply")
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	resetMs, _ := values[2].(int64)
	reset := time.UnixMilli(resetMs)

	if allowed != 1 {
		return denied(max, reset), nil
	}
	return Result{
		Success:   true,
		Limit:     max,
		Remaining: int(remaining),
		ResetTime: reset,
	}, nil
}

// Sweep implements Store. Redis expires finished windows on its own.
func (s *RedisStore) Sweep(_ context.Context) (int, error) {
	return 0, nil
}

// Ping checks connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
