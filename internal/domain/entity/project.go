package entity

import (
	"strings"
	"time"
)

// DefaultLanguageCode is used when a request names no language.
const DefaultLanguageCode = "en"

// Project is a portfolio project in one language.
type Project struct {
	ID           string    `validate:"-"`
	Name         string    `validate:"required"`
	ImageURL     string    `validate:"required,url"`
	About        string    `validate:"min=10"`
	Date         string    `validate:"required"`
	GitHub       string    `validate:"omitempty,url"`
	Live         string    `validate:"omitempty,url"`
	New          bool      `validate:"-"`
	Dev          bool      `validate:"-"`
	Tech         []string  `validate:"min=1,dive,required"`
	LanguageCode string    `validate:"-"`
	CreatedAt    time.Time `validate:"-"`
}

// Validate checks a project submitted by the dashboard and normalizes its
// technology names.
func (p *Project) Validate() error {
	for i, t := range p.Tech {
		p.Tech[i] = strings.TrimSpace(t)
	}
	if p.LanguageCode == "" {
		p.LanguageCode = DefaultLanguageCode
	}
	return validateStruct(p)
}

// Language is a language the portfolio is published in.
type Language struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}
