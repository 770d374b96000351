package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when a persisted snapshot cannot be decoded
	ErrCorrupt = errors.New("corrupt snapshot")
)
