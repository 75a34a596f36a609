package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	"github.com/crljhnmngs/portfolio-admin/internal/observability/logging"
)

// Authenticator creates and ends sessions.
// *authservice.SessionService satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*entity.User, *entity.Session, error)
	Invalidate(ctx context.Context, id string) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *entity.User `json:"user"`
}

type sessionResponse struct {
	User    *entity.User    `json:"user"`
	Session *entity.Session `json:"session"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// Handlers serves the login, logout and session endpoints.
type Handlers struct {
	auth      Authenticator
	validator *SessionValidator
	logger    *slog.Logger
}

// NewHandlers wires the auth endpoints. A nil logger uses slog.Default().
func NewHandlers(auth Authenticator, validator *SessionValidator, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{auth: auth, validator: validator, logger: logger}
}

// Login authenticates an email and password and starts a session.
//
// Responses:
//   - 200 {"user": {...}} with the session cookie
//   - 400 {"error": "Missing fields"}
//   - 401 {"error": "Invalid email or password"}
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.WithRequestID(r.Context(), h.logger)
	defer func() { RecordLoginDuration(time.Since(start).Seconds()) }()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RecordLoginAttempt("bad_request")
		respond.Message(w, http.StatusBadRequest, "Missing fields")
		return
	}

	user, session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, entity.ErrValidationFailed):
		RecordLoginAttempt("bad_request")
		respond.Message(w, http.StatusBadRequest, "Missing fields")
		return
	case errors.Is(err, entity.ErrInvalidCredentials):
		RecordLoginAttempt("invalid_credentials")
		logger.Warn("login failed",
			slog.String("reason", "invalid_credentials"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		respond.Message(w, http.StatusUnauthorized, "Invalid email or password")
		return
	case err != nil:
		RecordLoginAttempt("error")
		respond.SafeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	RecordLoginAttempt("success")
	logger.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	h.validator.Cookies().SetSessionCookie(w, session)
	respond.JSON(w, http.StatusOK, userResponse{User: user})
}

// Logout ends the session named by the cookie and clears it.
//
// Responses:
//   - 200 {"success": true}
//   - 401 {"error": "No session found"}
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		respond.Message(w, http.StatusUnauthorized, "No session found")
		return
	}

	if err := h.auth.Invalidate(r.Context(), cookie.Value); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	h.validator.Cookies().ClearSessionCookie(w)
	respond.JSON(w, http.StatusOK, successResponse{Success: true})
}

// Session reports the current session, or nulls when there is none.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.validator.Validate(w, r)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, "Internal server error", err)
		return
	}
	if !outcome.Valid {
		respond.JSON(w, http.StatusOK, sessionResponse{})
		return
	}
	respond.JSON(w, http.StatusOK, sessionResponse{User: outcome.User, Session: outcome.Session})
}
