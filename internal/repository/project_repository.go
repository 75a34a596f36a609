package repository

import (
	"context"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
)

type ProjectRepository interface {
	ListByLanguage(ctx context.Context, languageCode string) ([]*entity.Project, error)
	Get(ctx context.Context, id string) (*entity.Project, error)
	// Create and Update replace the project's technology list, creating
	// unknown technologies by name.
	Create(ctx context.Context, project *entity.Project) error
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id string) error
}

type LanguageRepository interface {
	List(ctx context.Context) ([]*entity.Language, error)
}
