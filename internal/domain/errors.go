package domain

import "errors"

var (
	// ErrNotFound indicates that no entry exists with the requested ID.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidEntry indicates that an entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")
)
