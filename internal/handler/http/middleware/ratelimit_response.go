package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	"github.com/crljhnmngs/portfolio-admin/pkg/ratelimit"
)

// resetLayout renders X-RateLimit-Reset as an ISO-8601 UTC instant with
// millisecond precision, e.g. "2025-01-01T12:15:00.000Z".
const resetLayout = "2006-01-02T15:04:05.000Z"

// SetRateLimitHeaders writes the X-RateLimit-* headers describing result.
//
// Headers:
//   - X-RateLimit-Limit: maximum attempts per window
//   - X-RateLimit-Remaining: attempts left in the current window
//   - X-RateLimit-Reset: when the window ends
func SetRateLimitHeaders(w http.ResponseWriter, result ratelimit.Result) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	h.Set("X-RateLimit-Reset", FormatResetTime(result.ResetTime))
}

// FormatResetTime formats t the way X-RateLimit-Reset carries it.
func FormatResetTime(t time.Time) string {
	return t.UTC().Format(resetLayout)
}

// RateLimitMessage is the default body of a 429 response.
func RateLimitMessage(result ratelimit.Result, now time.Time) string {
	minutes := result.RetryAfterMinutes(now)
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("Too many requests. Please try again in %d %s.", minutes, unit)
}

// WriteRateLimitResponse writes a 429 Too Many Requests response for a
// rejected result.
//
// The body is {"error": customMessage}, or RateLimitMessage when
// customMessage is empty. Besides the X-RateLimit-* headers it sets
// Retry-After to the whole seconds until the window resets.
func WriteRateLimitResponse(w http.ResponseWriter, result ratelimit.Result, customMessage string, now time.Time) {
	msg := customMessage
	if msg == "" {
		msg = RateLimitMessage(result, now)
	}

	SetRateLimitHeaders(w, result)
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfterSeconds(now)))
	respond.Message(w, http.StatusTooManyRequests, msg)
}
