package entity

import (
	"strings"
	"time"
)

// Skill is one entry of the portfolio's skill list.
type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"min=2,max=100"`
	IconURL   string    `json:"icon_url,omitempty" validate:"omitempty,max=255,http_url"`
	Category  string    `json:"category" validate:"min=2,max=50"`
	CreatedAt time.Time `json:"-"`
}

// Validate checks a skill submitted by the dashboard.
// A blank name is reported on its own, before any other rule.
func (s *Skill) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return ErrSkillNameRequired
	}
	return validateStruct(s)
}
