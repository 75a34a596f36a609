package ratelimit

import (
	"fmt"
	"time"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultWindow      = 15 * time.Minute
	DefaultMaxAttempts = 5
	DefaultPrefix      = "ratelimit"
)

// Config describes one rate limit policy.
//
// Call sites pick their own policy; distinct endpoints sharing an identifier
// stay isolated through distinct prefixes.
type Config struct {
	// Window is the length of a fixed window.
	// Default: 15 minutes
	Window time.Duration `yaml:"window"`

	// MaxAttempts is the number of attempts admitted per window.
	// Default: 5
	MaxAttempts int `yaml:"max_attempts"`

	// Prefix namespaces the counters of this policy.
	// Default: "ratelimit"
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns the default policy (15 minutes, 5 attempts).
func DefaultConfig() Config {
	return Config{
		Window:      DefaultWindow,
		MaxAttempts: DefaultMaxAttempts,
		Prefix:      DefaultPrefix,
	}
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Negative values are left untouched so that Validate can reject them.
func (c *Config) ApplyDefaults() {
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
}

// Validate checks that the policy can be enforced.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	return nil
}

// Key builds the composite counter key for identifier under prefix.
func Key(prefix, identifier string) string {
	return prefix + ":" + identifier
}
