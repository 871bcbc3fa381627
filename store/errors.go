package store

import "errors"

// Error Handling Guidelines:
// - Services/Stores: Use fmt.Errorf("context: %w", err) for wrapping errors
// - Handlers: Use apperrors.* functions for HTTP-appropriate errors

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested message was not found.
	ErrNotFound = errors.New("message not found")

	// ErrConflict indicates a conflict, e.g., a non-superseding message
	// colliding with an existing identifier.
	ErrConflict = errors.New("conflict")
)
