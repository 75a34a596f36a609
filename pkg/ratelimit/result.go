package ratelimit

import (
	"math"
	"time"
)

// Entry is the state of one fixed window.
type Entry struct {
	Count     int
	ResetTime time.Time
}

// expired reports whether the window has ended at now.
// The window is still open at exactly ResetTime.
func (e *Entry) expired(now time.Time) bool {
	return now.After(e.ResetTime)
}

// Result is the outcome of a single Check.
type Result struct {
	// Success is true when the attempt was admitted.
	Success bool `json:"success"`

	// Limit is the configured maximum attempts per window.
	Limit int `json:"limit"`

	// Remaining is the number of attempts still admitted in this window.
	// Always 0 on rejection.
	Remaining int `json:"remaining"`

	// ResetTime is when the current window ends.
	ResetTime time.Time `json:"resetTime"`
}

// admitted builds the result of an admitted attempt that brought the window to count.
func admitted(max, count int, reset time.Time) Result {
	return Result{
		Success:   true,
		Limit:     max,
		Remaining: max - count,
		ResetTime: reset,
	}
}

// denied builds the result of a rejected attempt.
func denied(max int, reset time.Time) Result {
	return Result{
		Success:   false,
		Limit:     max,
		Remaining: 0,
		ResetTime: reset,
	}
}

// RetryAfter returns how long until the window resets, never negative.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetTime.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RetryAfterSeconds returns RetryAfter rounded up to whole seconds.
func (r Result) RetryAfterSeconds(now time.Time) int {
	return int(math.Ceil(r.RetryAfter(now).Seconds()))
}

// RetryAfterMinutes returns RetryAfter rounded up to whole minutes, at least 1.
func (r Result) RetryAfterMinutes(now time.Time) int {
	m := int(math.Ceil(r.RetryAfter(now).Minutes()))
	if m < 1 {
		return 1
	}
	return m
}
