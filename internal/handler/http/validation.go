package http

import (
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
)

// Input limits enforced before any gate runs.
const (
	MaxAPIKeyLength = 512
	MaxCookieLength = 8 << 10
	MaxPathLength   = 2 << 10
)

// InputValidation returns middleware that rejects oversized credentials and
// paths before they reach the gates or the rate limiter, where they would
// otherwise be compared, hashed into keys or logged.
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case len(r.Header.Get("x-api-key")) > MaxAPIKeyLength:
				respond.Message(w, http.StatusBadRequest, "API key header too large")
			case len(r.Header.Get("Cookie")) > MaxCookieLength:
				respond.Message(w, http.StatusRequestHeaderFieldsTooLarge, "Cookie header too large")
			case len(r.URL.Path) > MaxPathLength:
				respond.Message(w, http.StatusRequestURITooLong, "URI too long")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
