package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

// UpsertInput is a project submitted by the dashboard.
type UpsertInput struct {
	Name         string
	ImageURL     string
	About        string
	Date         string
	GitHub       string
	Live         string
	New          bool
	Dev          bool
	Tech         []string
	LanguageCode string
}

// Service provides project management use cases.
type Service struct {
	Repo         repository.ProjectRepository
	LanguageRepo repository.LanguageRepository
}

// ListByLanguage returns the projects published in languageCode, newest
// first. An empty code means entity.DefaultLanguageCode.
func (s *Service) ListByLanguage(ctx context.Context, languageCode string) ([]*entity.Project, error) {
	languageCode = strings.TrimSpace(languageCode)
	if languageCode == "" {
		languageCode = entity.DefaultLanguageCode
	}

	projects, err := s.Repo.ListByLanguage(ctx, languageCode)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Upsert creates a project when id is NewID and replaces project id
// otherwise, technology list included.
// Returns a ValidationError for invalid input and ErrProjectNotFound for an
// unknown id.
func (s *Service) Upsert(ctx context.Context, id string, in UpsertInput) (*entity.Project, error) {
	tech := make([]string, len(in.Tech))
	copy(tech, in.Tech)

	p := &entity.Project{
		Name:         strings.TrimSpace(in.Name),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		About:        in.About,
		Date:         strings.TrimSpace(in.Date),
		GitHub:       strings.TrimSpace(in.GitHub),
		Live:         strings.TrimSpace(in.Live),
		New:          in.New,
		Dev:          in.Dev,
		Tech:         dedupe(tech),
		LanguageCode: strings.TrimSpace(in.LanguageCode),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if id == NewID {
		if err := s.Repo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		return p, nil
	}

	p.ID = id
	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes project id and its technology links.
// Returns ErrProjectNotFound if the project does not exist.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Languages returns the supported languages ordered by name.
func (s *Service) Languages(ctx context.Context) ([]*entity.Language, error) {
	langs, err := s.LanguageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return langs, nil
}

// dedupe drops repeated technology names after trimming, keeping the first
// occurrence. The link table allows each technology once per project.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		key := strings.TrimSpace(n)
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, n)
	}
	return out
}
