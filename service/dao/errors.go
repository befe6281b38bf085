package dao

import "errors"

// Sentinel errors shared by every store implementation so callers detect
// conditions with errors.Is instead of string matching.
var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates an empty or otherwise unusable key.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist nil.
	ErrNilEntity = errors.New("dao: nil entity")
)
