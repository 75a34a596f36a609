// Package skill provides HTTP handlers for the skill endpoints.
package skill

import "github.com/crljhnmngs/portfolio-admin/internal/domain/entity"

// DTO represents the JSON structure for skill data transfer.
type DTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	IconURL  *string `json:"icon_url"`
	Category string  `json:"category"`
}

type listResponse struct {
	Skills []DTO `json:"skills"`
}

type upsertRequest struct {
	Name     string `json:"name"`
	IconURL  string `json:"icon_url"`
	Category string `json:"category"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func toDTO(s *entity.Skill) DTO {
	d := DTO{ID: s.ID, Name: s.Name, Category: s.Category}
	if s.IconURL != "" {
		icon := s.IconURL
		d.IconURL = &icon
	}
	return d
}
