// Package tree materializes persisted block descriptors into live block
// graphs and keeps the registry of running trees addressable by policy,
// uuid and tag.
package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnregisteredPolicy is returned when no live tree is registered for a
	// policy id.
	ErrUnregisteredPolicy = errors.New("policy is not registered")

	// ErrBlockNotFound is returned when no live block matches a uuid or tag.
	ErrBlockNotFound = errors.New("block not found")
)

// BuildError attributes a tree construction failure to the descriptor node
// it occurred on.
type BuildError struct {
	BlockID string
	Err     error
}

// Error implements error.
func (e *BuildError) Error() string {
	if e.BlockID == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("block %s: %v", e.BlockID, e.Err)
}

// Unwrap exposes the cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}
