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

type ProjectRepo struct{ db DB }

func NewProjectRepo(db DB) repository.ProjectRepository {
	return &ProjectRepo{db: db}
}

const projectColumns = `
SELECT id, name, image_url, about, date, github, live, is_new, is_dev,
       language_code, created_at
FROM portfolio_projects`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(sc rowScanner) (*entity.Project, error) {
	var (
		p            entity.Project
		github, live sql.NullString
	)
	if err := sc.Scan(
		&p.ID, &p.Name, &p.ImageURL, &p.About, &p.Date, &github, &live,
		&p.New, &p.Dev, &p.LanguageCode, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.GitHub = github.String
	p.Live = live.String
	p.Tech = []string{}
	return &p, nil
}

// ListByLanguage returns the projects published in languageCode, newest
// first, each with its technologies in submission order.
func (repo *ProjectRepo) ListByLanguage(ctx context.Context, languageCode string) ([]*entity.Project, error) {
	rows, err := repo.db.QueryContext(ctx,
		projectColumns+`
WHERE language_code = $1
ORDER BY created_at DESC`, languageCode)
	if err != nil {
		return nil, fmt.Errorf("ListByLanguage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := make([]*entity.Project, 0, 16)
	byID := make(map[string]*entity.Project)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByLanguage: Scan: %w", err)
		}
		projects = append(projects, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByLanguage: rows.Err: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	const techQuery = `
SELECT pt.project_id, t.name
FROM portfolio_project_tech pt
JOIN tech t ON t.id = pt.tech_id
JOIN portfolio_projects p ON p.id = pt.project_id
WHERE p.language_code = $1
ORDER BY pt.project_id, pt.position`
	techRows, err := repo.db.QueryContext(ctx, techQuery, languageCode)
	if err != nil {
		return nil, fmt.Errorf("ListByLanguage: tech: %w", err)
	}
	defer func() { _ = techRows.Close() }()

	for techRows.Next() {
		var projectID, name string
		if err := techRows.Scan(&projectID, &name); err != nil {
			return nil, fmt.Errorf("ListByLanguage: tech Scan: %w", err)
		}
		if p, ok := byID[projectID]; ok {
			p.Tech = append(p.Tech, name)
		}
	}
	if err := techRows.Err(); err != nil {
		return nil, fmt.Errorf("ListByLanguage: tech rows.Err: %w", err)
	}
	return projects, nil
}

func (repo *ProjectRepo) Get(ctx context.Context, id string) (*entity.Project, error) {
	p, err := scanProject(repo.db.QueryRowContext(ctx, projectColumns+`
WHERE id = $1
LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	const techQuery = `
SELECT t.name
FROM portfolio_project_tech pt
JOIN tech t ON t.id = pt.tech_id
WHERE pt.project_id = $1
ORDER BY pt.position`
	rows, err := repo.db.QueryContext(ctx, techQuery, id)
	if err != nil {
		return nil, fmt.Errorf("Get: tech: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("Get: tech Scan: %w", err)
		}
		p.Tech = append(p.Tech, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Get: tech rows.Err: %w", err)
	}
	return p, nil
}

func (repo *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return repo.inTx(ctx, "Create", func(tx *sql.Tx) error {
		const query = `
INSERT INTO portfolio_projects
       (id, name, image_url, about, date, github, live, is_new, is_dev, language_code)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`
		err := tx.QueryRowContext(ctx, query,
			p.ID, p.Name, p.ImageURL, p.About, p.Date,
			nullable(p.GitHub), nullable(p.Live), p.New, p.Dev, p.LanguageCode,
		).Scan(&p.CreatedAt)
		if err != nil {
			return err
		}
		return replaceTech(ctx, tx, p.ID, p.Tech)
	})
}

func (repo *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	return repo.inTx(ctx, "Update", func(tx *sql.Tx) error {
		const query = `
UPDATE portfolio_projects SET
       name          = $1,
       image_url     = $2,
       about         = $3,
       date          = $4,
       github        = $5,
       live          = $6,
       is_new        = $7,
       is_dev        = $8,
       language_code = $9
WHERE id = $10
RETURNING created_at`
		err := tx.QueryRowContext(ctx, query,
			p.Name, p.ImageURL, p.About, p.Date,
			nullable(p.GitHub), nullable(p.Live), p.New, p.Dev, p.LanguageCode,
			p.ID,
		).Scan(&p.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM portfolio_project_tech WHERE project_id = $1`, p.ID); err != nil {
			return err
		}
		return replaceTech(ctx, tx, p.ID, p.Tech)
	})
}

// Delete removes a project. Its technology links go with it (ON DELETE
// CASCADE); the technologies themselves stay.
func (repo *ProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM portfolio_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ProjectRepo) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// replaceTech links names to the project in order, creating technologies
// that do not exist yet.
func replaceTech(ctx context.Context, tx *sql.Tx, projectID string, names []string) error {
	const upsert = `
INSERT INTO tech (id, name) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	const link = `
INSERT INTO portfolio_project_tech (project_id, tech_id, position)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, tech_id) DO NOTHING`

	for i, name := range names {
		var techID string
		if err := tx.QueryRowContext(ctx, upsert, uuid.NewString(), name).Scan(&techID); err != nil {
			return fmt.Errorf("tech %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, link, projectID, techID, i); err != nil {
			return fmt.Errorf("link %q: %w", name, err)
		}
	}
	return nil
}
