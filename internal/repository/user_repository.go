package repository

import (
	"context"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
)

type UserRepository interface {
	Get(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
}

// SessionRepository stores login sessions. Lookups return nil, nil when the
// session does not exist.
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	GetWithUser(ctx context.Context, id string) (*entity.Session, *entity.User, error)
	UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
