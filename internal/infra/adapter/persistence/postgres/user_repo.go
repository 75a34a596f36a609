package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

type UserRepo struct{ db DB }

func NewUserRepo(db DB) repository.UserRepository {
	return &UserRepo{db: db}
}

func (repo *UserRepo) Get(ctx context.Context, id string) (*entity.User, error) {
	const query = `
SELECT id, email, hashed_password, first_name, last_name
FROM users
WHERE id = $1
LIMIT 1`
	var u entity.User
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &u, nil
}

func (repo *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const query = `
SELECT id, email, hashed_password, first_name, last_name
FROM users
WHERE email = $1
LIMIT 1`
	var u entity.User
	err := repo.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByEmail: %w", err)
	}
	return &u, nil
}

func (repo *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	const query = `
INSERT INTO users (id, email, hashed_password, first_name, last_name)
VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, query,
		user.ID, user.Email, user.HashedPassword, user.FirstName, user.LastName,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *UserRepo) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	const query = `UPDATE users SET hashed_password = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("UpdatePassword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdatePassword: %w", entity.ErrNotFound)
	}
	return nil
}
