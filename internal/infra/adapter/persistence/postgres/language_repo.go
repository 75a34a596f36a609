package postgres

import (
	"context"
	"fmt"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

type LanguageRepo struct{ db DB }

func NewLanguageRepo(db DB) repository.LanguageRepository {
	return &LanguageRepo{db: db}
}

func (repo *LanguageRepo) List(ctx context.Context) ([]*entity.Language, error) {
	const query = `
SELECT code, name, is_default
FROM supported_languages
ORDER BY name ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	langs := make([]*entity.Language, 0, 8)
	for rows.Next() {
		var l entity.Language
		if err := rows.Scan(&l.Code, &l.Name, &l.IsDefault); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		langs = append(langs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows.Err: %w", err)
	}
	return langs, nil
}
