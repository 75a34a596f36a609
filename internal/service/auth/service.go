// Package auth implements server-side login sessions for the dashboard API.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

// DefaultSessionTTL is how long a session lives without activity.
const DefaultSessionTTL = 30 * 24 * time.Hour

// sessionIDBytes gives 200 bits of entropy, 40 base32 characters.
const sessionIDBytes = 25

var sessionIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// SessionService logs administrators in and keeps their sessions alive.
type SessionService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*SessionService)

// WithTTL overrides DefaultSessionTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *SessionService) { s.now = now }
}

func NewSessionService(users repository.UserRepository, sessions repository.SessionRepository, opts ...Option) *SessionService {
	s := &SessionService{
		users:    users,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration { return s.ttl }

// Login checks the credentials and opens a new session.
// It returns entity.ErrValidationFailed for a blank email or password and
// entity.ErrInvalidCredentials for an unknown email or a wrong password.
func (s *SessionService) Login(ctx context.Context, email, password string) (*entity.User, *entity.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, entity.ErrValidationFailed
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	if user == nil {
		burnVerify(password)
		return nil, nil, entity.ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.HashedPassword)
	if errors.Is(err, ErrUnsupportedHash) {
		slog.Error("stored password hash has an unsupported format",
			slog.String("user_id", user.ID))
		return nil, nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, nil, entity.ErrInvalidCredentials
	}

	if NeedsRehash(user.HashedPassword) {
		s.upgradeHash(ctx, user, password)
	}

	session, err := s.create(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return user, session, nil
}

// upgradeHash replaces a legacy bcrypt hash with argon2id. Failure only
// costs another attempt at the next login.
func (s *SessionService) upgradeHash(ctx context.Context, user *entity.User, password string) {
	hash, err := HashPassword(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		slog.Warn("password hash upgrade failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return
	}
	user.HashedPassword = hash
	slog.Info("password hash upgraded to argon2id", slog.String("user_id", user.ID))
}

func (s *SessionService) create(ctx context.Context, userID string) (*entity.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	session := &entity.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
		Fresh:     true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Validate looks up a session and its user. It returns nil, nil, nil when
// the session is unknown, expired or orphaned; an expired session is
// deleted on the way. A session in the second half of its lifetime is
// extended to a full TTL and comes back with Fresh set.
func (s *SessionService) Validate(ctx context.Context, id string) (*entity.Session, *entity.User, error) {
	if id == "" {
		return nil, nil, nil
	}

	session, user, err := s.sessions.GetWithUser(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("validate session: %w", err)
	}
	if session == nil || user == nil {
		return nil, nil, nil
	}

	now := s.now()
	if session.Expired(now) {
		if err := s.sessions.Delete(ctx, id); err != nil {
			return nil, nil, fmt.Errorf("validate session: %w", err)
		}
		return nil, nil, nil
	}

	if session.ExpiresAt.Sub(now) < s.ttl/2 {
		expiresAt := now.Add(s.ttl)
		err := s.sessions.UpdateExpiry(ctx, id, expiresAt)
		if errors.Is(err, entity.ErrNotFound) {
			// logged out concurrently
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("validate session: %w", err)
		}
		session.ExpiresAt = expiresAt
		session.Fresh = true
	}
	return session, user, nil
}

// Invalidate ends a session. Unknown IDs are not an error.
func (s *SessionService) Invalidate(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// InvalidateUser ends every session of a user.
func (s *SessionService) InvalidateUser(ctx context.Context, userID string) (int64, error) {
	n, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("invalidate user sessions: %w", err)
	}
	return n, nil
}

// PurgeExpired deletes every session whose expiry has passed.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return strings.ToLower(sessionIDEncoding.EncodeToString(buf)), nil
}
