// Package config reads typed settings from the environment. A malformed
// value never fails startup: it is logged and the default is used.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// fromEnv parses the trimmed value of key with parse. Unset or blank keys
// yield def silently; parse failures yield def with a warning.
func fromEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring malformed environment variable",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.String("error", err.Error()))
		return def
	}
	return v
}

// GetEnvString returns key, or def when unset or blank.
func GetEnvString(key, def string) string {
	return fromEnv(key, def, func(s string) (string, error) { return s, nil })
}

// GetEnvInt returns key parsed as a base-10 integer.
func GetEnvInt(key string, def int) int {
	return fromEnv(key, def, strconv.Atoi)
}

// GetEnvBool returns key parsed by strconv.ParseBool.
func GetEnvBool(key string, def bool) bool {
	return fromEnv(key, def, strconv.ParseBool)
}

// GetEnvDuration returns key parsed by time.ParseDuration ("90s", "720h").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	return fromEnv(key, def, time.ParseDuration)
}

// GetEnvStringList returns the comma-separated items of key.
//
//	// ALLOWED_ORIGINS="https://example.com, https://www.example.com"
//	GetEnvStringList("ALLOWED_ORIGINS", nil)
//	// ["https://example.com" "https://www.example.com"]
func GetEnvStringList(key string, def []string) []string {
	return SplitList(os.Getenv(key), def)
}

// SplitList splits raw on commas, trimming items and dropping blanks. It
// returns def when no item is left.
func SplitList(raw string, def []string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return def
	}
	return items
}
