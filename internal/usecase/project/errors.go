// Package project provides use cases for managing portfolio projects and the
// languages they are published in.
package project

import "errors"

// Sentinel errors for project use case operations.
var (
	// ErrProjectNotFound indicates that the project to update or delete does not exist.
	ErrProjectNotFound = errors.New("project not found")
)

// NewID is the path ID that asks for a new project instead of an update.
const NewID = "add"
