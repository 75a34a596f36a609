package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

type SkillRepo struct{ db DB }

func NewSkillRepo(db DB) repository.SkillRepository {
	return &SkillRepo{db: db}
}

func (repo *SkillRepo) List(ctx context.Context) ([]*entity.Skill, error) {
	const query = `
SELECT id, name, icon_url, category, created_at
FROM skills
ORDER BY created_at DESC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	skills := make([]*entity.Skill, 0, 32)
	for rows.Next() {
		var (
			s    entity.Skill
			icon sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &icon, &s.Category, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		s.IconURL = icon.String
		skills = append(skills, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return skills, nil
}

func (repo *SkillRepo) Create(ctx context.Context, skill *entity.Skill) error {
	if skill.ID == "" {
		skill.ID = uuid.NewString()
	}

	const query = `
INSERT INTO skills (id, name, icon_url, category)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err := repo.db.QueryRowContext(ctx, query,
		skill.ID, skill.Name, nullable(skill.IconURL), skill.Category,
	).Scan(&skill.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SkillRepo) Update(ctx context.Context, skill *entity.Skill) error {
	const query = `
UPDATE skills SET
       name     = $1,
       icon_url = $2,
       category = $3
WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query,
		skill.Name, nullable(skill.IconURL), skill.Category, skill.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *SkillRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM skills WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}
