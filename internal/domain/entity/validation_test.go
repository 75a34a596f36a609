package entity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "name", Message: "is required"}

	assert.Equal(t, "name: is required", err.Error())
	assert.True(t, errors.Is(err, ErrValidationFailed))
}

func TestSkill_Validate(t *testing.T) {
	tests := []struct {
		name      string
		skill     Skill
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid without icon",
			skill: Skill{Name: "Go", Category: "Backend"},
		},
		{
			name:  "valid with icon",
			skill: Skill{Name: "React", Category: "Frontend", IconURL: "https://cdn.example.com/react.svg"},
		},
		{
			name:      "blank name",
			skill:     Skill{Name: "   ", Category: "Backend"},
			wantField: "name",
			wantMsg:   "Skill name is required",
		},
		{
			name:      "name too short",
			skill:     Skill{Name: "C", Category: "Backend"},
			wantField: "name",
		},
		{
			name:      "name too long",
			skill:     Skill{Name: strings.Repeat("x", 101), Category: "Backend"},
			wantField: "name",
		},
		{
			name:      "category too short",
			skill:     Skill{Name: "Go", Category: "B"},
			wantField: "category",
		},
		{
			name:      "icon not http",
			skill:     Skill{Name: "Go", Category: "Backend", IconURL: "ftp://example.com/go.svg"},
			wantField: "iconurl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.skill.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, verr.Message)
			}
		})
	}
}

func TestSkill_Validate_BlankNameSentinel(t *testing.T) {
	blank := Skill{Name: " ", Category: "Backend"}
	assert.ErrorIs(t, blank.Validate(), ErrSkillNameRequired)

	short := Skill{Name: "C", Category: "Backend"}
	err := short.Validate()
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.NotErrorIs(t, err, ErrSkillNameRequired)
}

func validProject() Project {
	return Project{
		Name:     "Portfolio",
		ImageURL: "https://images.example.com/portfolio.png",
		About:    "A personal portfolio site.",
		Date:     "2024-05",
		Tech:     []string{"Go", " PostgreSQL "},
	}
}

func TestProject_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Project)
		wantField string
	}{
		{name: "valid", mutate: func(p *Project) {}},
		{name: "empty links allowed", mutate: func(p *Project) { p.GitHub, p.Live = "", "" }},
		{name: "missing name", mutate: func(p *Project) { p.Name = "" }, wantField: "name"},
		{name: "bad image url", mutate: func(p *Project) { p.ImageURL = "not a url" }, wantField: "imageurl"},
		{name: "short about", mutate: func(p *Project) { p.About = "short" }, wantField: "about"},
		{name: "missing date", mutate: func(p *Project) { p.Date = "" }, wantField: "date"},
		{name: "bad github", mutate: func(p *Project) { p.GitHub = "github" }, wantField: "github"},
		{name: "no tech", mutate: func(p *Project) { p.Tech = nil }, wantField: "tech"},
		{name: "blank tech", mutate: func(p *Project) { p.Tech = []string{"Go", "  "} }, wantField: "tech[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProject()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, DefaultLanguageCode, p.LanguageCode)
				assert.Equal(t, []string{"Go", "PostgreSQL"}, p.Tech)
				return
			}

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Hour)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Hour)))
}
