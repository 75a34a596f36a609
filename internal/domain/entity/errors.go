package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("entity not found")
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSkillNameRequired is returned for a blank skill name. Its message is
	// shown to the dashboard as is.
	ErrSkillNameRequired = &ValidationError{Field: "name", Message: "Skill name is required"}
)

// ValidationError names the field that failed. It matches
// ErrValidationFailed under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
