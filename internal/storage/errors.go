package storage

import "errors"

// Store errors. A duplicate InsertIfAbsent is not an error: the existing
// snapshot is returned with inserted=false.
var (
	// ErrNotFound is returned when a requested identifier is not tracked.
	ErrNotFound = errors.New("identifier not tracked")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
