package middleware

import (
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/pkg/security/csp"
)

// SecurityHeaders sets the CSP and the browser hardening headers on every
// response. A nil policy sends no CSP.
func SecurityHeaders(policy *csp.Policy) func(http.Handler) http.Handler {
	var name, value string
	if policy != nil {
		name, value = policy.Header(), policy.String()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if value != "" {
				h.Set(name, value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
