// Package config assembles the process configuration of the API server and
// the admin CLI from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	pkgconfig "github.com/crljhnmngs/portfolio-admin/pkg/config"
)

// Rate limit store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// AppConfig holds everything cmd/api needs at startup.
type AppConfig struct {
	// Port is the HTTP listen port. Default: "8080"
	Port string

	// DatabaseURL is the PostgreSQL DSN. Required.
	DatabaseURL string

	// AllowedOrigins lists the origins admitted by the API key gate.
	// Empty means every cross-origin request is refused.
	AllowedOrigins []string

	// APISecretKey is the shared x-api-key value.
	// Empty means no key ever matches.
	APISecretKey string

	Session SessionConfig

	RateLimit RateLimitConfig

	// Version is reported by /health and tracing resources.
	Version string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration
}

// SessionConfig configures session cookies and the purge job.
type SessionConfig struct {
	// TTL is the lifetime of a session. Default: 720h
	TTL time.Duration

	// CookieSecure marks the cookie Secure.
	// Default: true unless APP_ENV=development
	CookieSecure bool

	// PurgeSchedule is the cron spec of the expired-session purge.
	// Default: "@hourly"
	PurgeSchedule string
}

// RateLimitConfig configures the rate limit store.
type RateLimitConfig struct {
	// Store is StoreMemory or StoreRedis. Default: StoreMemory
	Store string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SweepInterval is how often finished windows are removed. Default: 60s
	SweepInterval time.Duration

	// MaxKeys bounds the in-memory table. Zero means unbounded.
	MaxKeys int

	// PolicyFile optionally overrides the built-in policies.
	PolicyFile string
}

// Load reads AppConfig from the environment and validates it.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           pkgconfig.GetEnvString("PORT", "8080"),
		DatabaseURL:    pkgconfig.GetEnvString("DATABASE_URL", ""),
		AllowedOrigins: pkgconfig.GetEnvStringList("ALLOWED_ORIGINS", nil),
		APISecretKey:   pkgconfig.GetEnvString("API_SECRET_KEY", ""),
		Session: SessionConfig{
			TTL:           pkgconfig.GetEnvDuration("SESSION_TTL", 30*24*time.Hour),
			CookieSecure:  pkgconfig.GetEnvBool("SESSION_COOKIE_SECURE", !isDevelopment()),
			PurgeSchedule: pkgconfig.GetEnvString("SESSION_PURGE_SCHEDULE", "@hourly"),
		},
		RateLimit: RateLimitConfig{
			Store:         strings.ToLower(pkgconfig.GetEnvString("RATE_LIMIT_STORE", StoreMemory)),
			RedisAddr:     pkgconfig.GetEnvString("REDIS_ADDR", "localhost:6379"),
			RedisPassword: pkgconfig.GetEnvString("REDIS_PASSWORD", ""),
			RedisDB:       pkgconfig.GetEnvInt("REDIS_DB", 0),
			SweepInterval: pkgconfig.GetEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 60*time.Second),
			MaxKeys:       pkgconfig.GetEnvInt("RATE_LIMIT_MAX_KEYS", 0),
			PolicyFile:    pkgconfig.GetEnvString("RATE_LIMIT_POLICY_FILE", ""),
		},
		Version:         pkgconfig.GetEnvString("VERSION", "dev"),
		ShutdownTimeout: pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isDevelopment() bool {
	return strings.EqualFold(pkgconfig.GetEnvString("APP_ENV", "production"), "development")
}

// Validate reports every invalid field at once.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %v", c.Session.TTL))
	}
	if err := ValidateCronSchedule(c.Session.PurgeSchedule); err != nil {
		errs = append(errs, fmt.Errorf("SESSION_PURGE_SCHEDULE: %w", err))
	}
	switch c.RateLimit.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RateLimit.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when RATE_LIMIT_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.RateLimit.Store))
	}
	if c.RateLimit.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_SWEEP_INTERVAL must be positive, got %v", c.RateLimit.SweepInterval))
	}
	if c.RateLimit.MaxKeys < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_KEYS must not be negative, got %d", c.RateLimit.MaxKeys))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// ValidateCronSchedule checks schedule with the parser the purge job uses:
// five standard fields or a descriptor such as "@hourly".
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("invalid cron schedule: cannot be empty")
	}
	if _, err := CronParser().Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// CronParser returns the parser shared by validation and the scheduler.
func CronParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}
