package skill

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	skillUC "github.com/crljhnmngs/portfolio-admin/internal/usecase/skill"
)

// Service is the skill use case the handlers depend on.
type Service interface {
	List(ctx context.Context) ([]*entity.Skill, error)
	Upsert(ctx context.Context, id string, in skillUC.UpsertInput) (*entity.Skill, error)
	Delete(ctx context.Context, id string) error
}

// ListHandler serves GET /api/skills.
type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, "Failed to fetch skills", err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, s := range list {
		out = append(out, toDTO(s))
	}
	respond.JSON(w, http.StatusOK, listResponse{Skills: out})
}

// UpsertHandler serves PUT /api/skills/{id}. The id "add" creates a skill.
type UpsertHandler struct{ Svc Service }

func (h UpsertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.Svc.Upsert(r.Context(), r.PathValue("id"), skillUC.UpsertInput{
		Name:     req.Name,
		IconURL:  req.IconURL,
		Category: req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrSkillNameRequired):
			respond.Message(w, http.StatusBadRequest, entity.ErrSkillNameRequired.Message)
		case errors.Is(err, entity.ErrValidationFailed):
			respond.Message(w, http.StatusBadRequest, "Validation failed")
		case errors.Is(err, skillUC.ErrSkillNotFound):
			respond.Message(w, http.StatusNotFound, "Skill not found")
		default:
			respond.SafeError(w, http.StatusInternalServerError, "Failed to upsert skill", err)
		}
		return
	}
	respond.JSON(w, http.StatusOK, successResponse{Success: true})
}

// DeleteHandler serves DELETE /api/skills/{id}.
type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.Delete(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, entity.ErrValidationFailed):
		respond.Message(w, http.StatusBadRequest, "Skill ID is required")
	case errors.Is(err, skillUC.ErrSkillNotFound):
		respond.Message(w, http.StatusNotFound, "Skill not found")
	default:
		respond.SafeError(w, http.StatusInternalServerError, "Failed to delete skill", err)
	}
}
