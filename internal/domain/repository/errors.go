package repository

import "errors"

// Common store errors, shared across storage implementations.
var (
	// ErrNotFound indicates no document exists at the requested path.
	ErrNotFound = errors.New("not found")
)
