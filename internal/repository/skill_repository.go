package repository

import (
	"context"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
)

type SkillRepository interface {
	List(ctx context.Context) ([]*entity.Skill, error)
	Create(ctx context.Context, skill *entity.Skill) error
	Update(ctx context.Context, skill *entity.Skill) error
	Delete(ctx context.Context, id string) error
}
