package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/repository"
)

// UpsertInput is a skill submitted by the dashboard.
type UpsertInput struct {
	Name     string
	IconURL  string
	Category string
}

// Service provides skill management use cases.
type Service struct {
	Repo repository.SkillRepository
}

// List returns every skill, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Skill, error) {
	skills, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// Upsert creates a skill when id is NewID and updates skill id otherwise.
// Returns a ValidationError for invalid input and ErrSkillNotFound for an
// unknown id.
func (s *Service) Upsert(ctx context.Context, id string, in UpsertInput) (*entity.Skill, error) {
	skill := &entity.Skill{
		Name:     in.Name,
		IconURL:  strings.TrimSpace(in.IconURL),
		Category: strings.TrimSpace(in.Category),
	}
	if err := skill.Validate(); err != nil {
		return nil, err
	}

	if id == NewID {
		if err := s.Repo.Create(ctx, skill); err != nil {
			return nil, fmt.Errorf("create skill: %w", err)
		}
		return skill, nil
	}

	skill.ID = id
	if err := s.Repo.Update(ctx, skill); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, fmt.Errorf("update skill: %w", err)
	}
	return skill, nil
}

// Delete removes skill id.
// Returns ErrSkillNotFound if the skill does not exist.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrSkillNotFound
		}
		return fmt.Errorf("delete skill: %w", err)
	}
	return nil
}
