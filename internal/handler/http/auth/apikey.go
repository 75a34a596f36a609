package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/middleware"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/logging"
)

// APIKeyHeader carries the shared secret of the public read API.
const APIKeyHeader = "x-api-key"

// Rejection messages of the API-key gate.
const (
	msgInvalidOrigin = "Forbidden - Invalid Origin"
	msgInvalidAPIKey = "Unauthorized - Invalid API Key"
)

// APIKeyOutcome is the verdict of APIKeyGate.Validate.
type APIKeyOutcome struct {
	Valid bool

	// Origin is the request's Origin header, "" for same-origin and
	// server-to-server calls.
	Origin string

	// IsCrossOrigin is true when an allow-listed Origin was admitted and the
	// response needs CORS headers.
	IsCrossOrigin bool

	// Rejection is set when Valid is false.
	Rejection *respond.Rejection
}

// APIKeyGate guards the public GET endpoints read by the portfolio site.
//
// Requests without an Origin header are not browser cross-origin calls and
// pass. Browser calls must come from an allow-listed origin and carry the
// shared key. Both checks fail closed: with no origins configured every
// Origin is refused, and with no secret every key is refused.
type APIKeyGate struct {
	origins middleware.OriginValidator
	secret  []byte
	logger  *slog.Logger
}

// NewAPIKeyGate creates a gate. A nil logger uses slog.Default().
func NewAPIKeyGate(origins middleware.OriginValidator, secret string, logger *slog.Logger) *APIKeyGate {
	if origins == nil {
		origins = middleware.NewAllowList(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyGate{origins: origins, secret: []byte(secret), logger: logger}
}

// Validate checks the Origin and x-api-key headers of r.
func (g *APIKeyGate) Validate(r *http.Request) APIKeyOutcome {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return APIKeyOutcome{Valid: true}
	}

	if !g.origins.IsAllowed(origin) {
		return APIKeyOutcome{
			Origin:    origin,
			Rejection: respond.Reject(http.StatusForbidden, msgInvalidOrigin),
		}
	}

	if !g.keyMatches(r.Header.Get(APIKeyHeader)) {
		return APIKeyOutcome{
			Origin:    origin,
			Rejection: respond.Reject(http.StatusUnauthorized, msgInvalidAPIKey),
		}
	}

	return APIKeyOutcome{Valid: true, Origin: origin, IsCrossOrigin: true}
}

// keyMatches compares in constant time. An empty secret matches nothing.
func (g *APIKeyGate) keyMatches(key string) bool {
	if len(g.secret) == 0 || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), g.secret) == 1
}

// HandleCORSOptions answers a preflight request. Disallowed or missing
// origins get an empty 403; allowed ones an empty 200 with CORS headers.
func (g *APIKeyGate) HandleCORSOptions(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if !g.origins.IsAllowed(origin) {
		RecordGateRejection("preflight", http.StatusForbidden)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	middleware.SetCORSHeaders(w, origin)
	w.WriteHeader(http.StatusOK)
}

// WriteCORSHeaders adds the CORS headers to an admitted cross-origin
// response. It does nothing for other outcomes.
func WriteCORSHeaders(w http.ResponseWriter, outcome APIKeyOutcome) {
	if !outcome.Valid || !outcome.IsCrossOrigin {
		return
	}
	middleware.SetCORSHeaders(w, outcome.Origin)
}

// Require wraps next with the gate. Admitted cross-origin requests get
// their CORS headers before next runs.
func (g *APIKeyGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		outcome := g.Validate(r)
		if !outcome.Valid {
			RecordGateRejection("api_key", outcome.Rejection.Status)
			logging.WithRequestID(r.Context(), g.logger).Warn("api key rejected",
				slog.String("origin", outcome.Origin),
				slog.Int("status", outcome.Rejection.Status),
				slog.String("path", r.URL.Path))
			outcome.Rejection.Write(w)
			return
		}

		WriteCORSHeaders(w, outcome)
		next.ServeHTTP(w, r)
	})
}
