// Package project provides HTTP handlers for the project and supported
// language endpoints.
package project

import (
	"time"

	"github.com/crljhnmngs/portfolio-admin/internal/domain/entity"
)

// DTO represents the JSON structure for project data transfer.
type DTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	About        string    `json:"about"`
	Date         string    `json:"date"`
	New          bool      `json:"new"`
	Dev          bool      `json:"dev"`
	Links        LinksDTO  `json:"links"`
	Tech         []string  `json:"tech"`
	LanguageCode string    `json:"language_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// LinksDTO holds the optional project links; absent links are null.
type LinksDTO struct {
	GitHub *string `json:"github"`
	Live   *string `json:"live"`
}

type listResponse struct {
	Projects []DTO `json:"projects"`
}

type upsertResponse struct {
	Success bool `json:"success"`
	Data    DTO  `json:"data"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type languagesResponse struct {
	SupportedLanguages []*entity.Language `json:"supportedLanguages"`
}

type upsertRequest struct {
	Name         string   `json:"name"`
	ImageURL     string   `json:"image_url"`
	About        string   `json:"about"`
	Date         string   `json:"date"`
	GitHub       string   `json:"github"`
	Live         string   `json:"live"`
	New          bool     `json:"new"`
	Dev          bool     `json:"dev"`
	Tech         []string `json:"tech"`
	LanguageCode string   `json:"language_code"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toDTO(p *entity.Project) DTO {
	tech := p.Tech
	if tech == nil {
		tech = []string{}
	}
	return DTO{
		ID:           p.ID,
		Name:         p.Name,
		ImageURL:     p.ImageURL,
		About:        p.About,
		Date:         p.Date,
		New:          p.New,
		Dev:          p.Dev,
		Links:        LinksDTO{GitHub: optional(p.GitHub), Live: optional(p.Live)},
		Tech:         tech,
		LanguageCode: p.LanguageCode,
		CreatedAt:    p.CreatedAt.UTC(),
	}
}
