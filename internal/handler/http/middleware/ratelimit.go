package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	"github.com/crljhnmngs/portfolio-admin/pkg/ratelimit"
)

// Checker is the admission call the middleware needs.
// *ratelimit.Limiter satisfies it.
type Checker interface {
	Check(ctx context.Context, identifier string, cfg ratelimit.Config) (ratelimit.Result, error)
}

// KeyFunc derives the rate limit identifier of a request.
type KeyFunc func(r *http.Request) string

// ByClientIP keys requests by client address.
func ByClientIP(extractor IPExtractor) KeyFunc {
	if extractor == nil {
		extractor = HeaderIPExtractor{}
	}
	return extractor.ClientIP
}

// ByUser keys requests by the authenticated user. Requests without a user
// fall back to the client address so they still share a budget.
func ByUser(userID func(ctx context.Context) (string, bool), fallback IPExtractor) KeyFunc {
	byIP := ByClientIP(fallback)
	return func(r *http.Request) string {
		if id, ok := userID(r.Context()); ok && id != "" {
			return "user:" + id
		}
		return byIP(r)
	}
}

// RateLimitOption configures RateLimit.
type RateLimitOption func(*rateLimitMiddleware)

// WithClock sets the clock used to compute Retry-After.
func WithClock(clock ratelimit.Clock) RateLimitOption {
	return func(m *rateLimitMiddleware) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithMessage replaces the default 429 message.
func WithMessage(msg string) RateLimitOption {
	return func(m *rateLimitMiddleware) {
		m.message = msg
	}
}

type rateLimitMiddleware struct {
	limiter Checker
	cfg     ratelimit.Config
	key     KeyFunc
	logger  *slog.Logger
	clock   ratelimit.Clock
	message string
}

// RateLimit returns middleware admitting at most cfg.MaxAttempts requests per
// key and window.
//
// Behavior:
//   - Admitted: X-RateLimit-* headers are set and next runs
//   - Rejected: 429 with {"error": "..."} and Retry-After; next does not run
//   - Limiter error: 500; the request is not admitted unchecked
//
// A nil logger uses slog.Default().
func RateLimit(limiter Checker, cfg ratelimit.Config, keyFunc KeyFunc, logger *slog.Logger, opts ...RateLimitOption) func(http.Handler) http.Handler {
	cfg.ApplyDefaults()
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &rateLimitMiddleware{
		limiter: limiter,
		cfg:     cfg,
		key:     keyFunc,
		logger:  logger,
		clock:   &ratelimit.SystemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m.wrap
}

func (m *rateLimitMiddleware) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identifier := m.key(r)

		result, err := m.limiter.Check(r.Context(), identifier, m.cfg)
		if err != nil {
			m.logger.Error("rate limit check failed",
				slog.String("prefix", m.cfg.Prefix),
				slog.String("path", r.URL.Path),
				slog.Any("error", err))
			respond.SafeError(w, http.StatusInternalServerError, "Internal server error", err)
			return
		}

		if !result.Success {
			now := m.clock.Now()
			m.logger.Warn("rate limit exceeded",
				slog.String("prefix", m.cfg.Prefix),
				slog.String("key", identifier),
				slog.Int("limit", result.Limit),
				slog.Duration("retry_after", result.RetryAfter(now).Round(time.Second)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			WriteRateLimitResponse(w, result, m.message, now)
			return
		}

		SetRateLimitHeaders(w, result)
		next.ServeHTTP(w, r)
	})
}

var _ Checker = (*ratelimit.Limiter)(nil)
