package storage

import "errors"

var (
	// ErrNotFound is returned when a requested run has no stored rows.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
