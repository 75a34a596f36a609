package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/logging"
)

// SessionCookieName is the cookie carrying the session ID.
const SessionCookieName = "auth_session"

type ctxKey string

const ctxUser ctxKey = "user"

// SessionProvider resolves session IDs.
// *authservice.SessionService satisfies it.
type SessionProvider interface {
	// Validate returns nil, nil, nil when the session is unknown, expired or
	// its user is gone. A returned session with Fresh set was extended.
	Validate(ctx context.Context, id string) (*entity.Session, *entity.User, error)
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	// Secure adds the Secure attribute. Off only in local development.
	Secure bool
}

// SetSessionCookie writes the cookie for s.
func (c CookieConfig) SetSessionCookie(w http.ResponseWriter, s *entity.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt.UTC(),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie writes a blank, already expired cookie.
func (c CookieConfig) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionOutcome is the verdict of SessionValidator.Validate.
type SessionOutcome struct {
	Valid   bool
	User    *entity.User
	Session *entity.Session

	// Rejection is set when Valid is false.
	Rejection *respond.Rejection
}

// SessionValidator admits requests carrying a live session cookie.
type SessionValidator struct {
	provider SessionProvider
	cookies  CookieConfig
	logger   *slog.Logger
}

// NewSessionValidator creates a SessionValidator. A nil logger uses
// slog.Default().
func NewSessionValidator(provider SessionProvider, cookies CookieConfig, logger *slog.Logger) *SessionValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionValidator{provider: provider, cookies: cookies, logger: logger}
}

// Cookies returns the cookie settings the validator writes with.
func (v *SessionValidator) Cookies() CookieConfig { return v.cookies }

func unauthorized() *respond.Rejection {
	return respond.Reject(http.StatusUnauthorized, "Unauthorized")
}

// Validate checks the session cookie of r.
//
// A missing cookie or a dead session yields a 401 rejection; for a dead
// session a blank cookie is also written to w. An extended session has its
// cookie re-issued. Only provider failures are returned as errors.
func (v *SessionValidator) Validate(w http.ResponseWriter, r *http.Request) (SessionOutcome, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		recordSessionValidation("missing")
		return SessionOutcome{Rejection: unauthorized()}, nil
	}

	session, user, err := v.provider.Validate(r.Context(), cookie.Value)
	if err != nil {
		recordSessionValidation("error")
		return SessionOutcome{}, err
	}

	if session == nil || user == nil {
		recordSessionValidation("invalid")
		v.cookies.ClearSessionCookie(w)
		return SessionOutcome{Rejection: unauthorized()}, nil
	}

	if session.Fresh {
		v.cookies.SetSessionCookie(w, session)
	}

	recordSessionValidation("valid")
	return SessionOutcome{Valid: true, User: user, Session: session}, nil
}

// RequireSession rejects requests without a valid session and stores the
// user in the request context for downstream handlers.
func (v *SessionValidator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.WithRequestID(r.Context(), v.logger)

		outcome, err := v.Validate(w, r)
		if err != nil {
			respond.SafeError(w, http.StatusInternalServerError, "Internal server error", err)
			return
		}
		if !outcome.Valid {
			RecordGateRejection("session", outcome.Rejection.Status)
			logger.Warn("session rejected",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))
			outcome.Rejection.Write(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), outcome.User)))
	})
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFromContext returns the user stored by RequireSession.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(ctxUser).(*entity.User)
	return u, ok && u != nil
}

// UserIDFromContext returns the ID of the user stored by RequireSession.
// It fits middleware.ByUser.
func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return "", false
	}
	return u.ID, true
}
