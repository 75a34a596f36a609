package project

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
	"github.com/crljhnmngs/portfolio-admin/internal/handler/http/respond"
	projUC "github.com/crljhnmngs/portfolio-admin/internal/usecase/project"
)

// Service is the project use case the handlers depend on.
type Service interface {
	ListByLanguage(ctx context.Context, languageCode string) ([]*entity.Project, error)
	Upsert(ctx context.Context, id string, in projUC.UpsertInput) (*entity.Project, error)
	Delete(ctx context.Context, id string) error
	Languages(ctx context.Context) ([]*entity.Language, error)
}

// ListHandler serves GET /api/projects?languageCode=.
type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.ListByLanguage(r.Context(), r.URL.Query().Get("languageCode"))
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, "Failed to fetch projects", err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, p := range list {
		out = append(out, toDTO(p))
	}
	respond.JSON(w, http.StatusOK, listResponse{Projects: out})
}

// UpsertHandler serves PUT /api/projects/{id}. The id "add" creates a project.
type UpsertHandler struct{ Svc Service }

func (h UpsertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Message(w, http.StatusBadRequest, "Validation failed")
		return
	}

	p, err := h.Svc.Upsert(r.Context(), r.PathValue("id"), projUC.UpsertInput{
		Name:         req.Name,
		ImageURL:     req.ImageURL,
		About:        req.About,
		Date:         req.Date,
		GitHub:       req.GitHub,
		Live:         req.Live,
		New:          req.New,
		Dev:          req.Dev,
		Tech:         req.Tech,
		LanguageCode: req.LanguageCode,
	})
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, upsertResponse{Success: true, Data: toDTO(p)})
	case errors.Is(err, entity.ErrValidationFailed):
		respond.Message(w, http.StatusBadRequest, "Validation failed")
	case errors.Is(err, projUC.ErrProjectNotFound):
		respond.Message(w, http.StatusNotFound, "Project not found")
	default:
		respond.SafeError(w, http.StatusInternalServerError, "Failed to upsert project", err)
	}
}

// DeleteHandler serves DELETE /api/projects/{id}.
type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.Delete(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, entity.ErrValidationFailed):
		respond.Message(w, http.StatusBadRequest, "Valid project ID is required")
	case errors.Is(err, projUC.ErrProjectNotFound):
		respond.Message(w, http.StatusNotFound, "Project not found")
	default:
		respond.SafeError(w, http.StatusInternalServerError, "Failed to delete project", err)
	}
}

// LanguagesHandler serves GET /api/supported-languages.
type LanguagesHandler struct{ Svc Service }

func (h LanguagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	langs, err := h.Svc.Languages(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, "Failed to fetch supported languages", err)
		return
	}
	if langs == nil {
		langs = []*entity.Language{}
	}
	respond.JSON(w, http.StatusOK, languagesResponse{SupportedLanguages: langs})
}
