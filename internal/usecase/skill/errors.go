// Package skill provides use cases for managing the portfolio's skill list.
package skill

import "errors"

// Sentinel errors for skill use case operations.
var (
	// ErrSkillNotFound indicates that the skill to update or delete does not exist.
	ErrSkillNotFound = errors.New("skill not found")
)

// NewID is the path ID that asks for a new skill instead of an update.
const NewID = "add"
