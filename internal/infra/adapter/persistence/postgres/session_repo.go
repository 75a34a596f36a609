package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

type SessionRepo struct{ db DB }

func NewSessionRepo(db DB) repository.SessionRepository {
	return &SessionRepo{db: db}
}

func (repo *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	const query = `
INSERT INTO sessions (id, user_id, expires_at)
VALUES ($1, $2, $3)`
	if _, err := repo.db.ExecContext(ctx, query, s.ID, s.UserID, s.ExpiresAt); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// GetWithUser loads a session and its owner in one round trip.
func (repo *SessionRepo) GetWithUser(ctx context.Context, id string) (*entity.Session, *entity.User, error) {
	const query = `
SELECT s.id, s.user_id, s.expires_at,
       u.id, u.email, u.hashed_password, u.first_name, u.last_name
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.id = $1
LIMIT 1`
	var (
		s entity.Session
		u entity.User
	)
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.ExpiresAt,
		&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("GetWithUser: %w", err)
	}
	return &s, &u, nil
}

func (repo *SessionRepo) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	const query = `UPDATE sessions SET expires_at = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, expiresAt, id)
	if err != nil {
		return fmt.Errorf("UpdateExpiry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateExpiry: %w", entity.ErrNotFound)
	}
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (repo *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (repo *SessionRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	const query = `DELETE FROM sessions WHERE user_id = $1`
	res, err := repo.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("DeleteByUser: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (repo *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	res, err := repo.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("DeleteExpired: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
