// Package storage defines the content-addressed file store the lifecycle
// coordinator hands policy archives to.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no content exists under a reference.
var ErrNotFound = errors.New("storage: content not found")

// Service is the content store collaborator contract.
type Service interface {
	// Put stores a blob and returns its content reference.
	Put(ctx context.Context, data []byte) (string, error)

	// Get returns the blob stored under a content reference.
	Get(ctx context.Context, ref string) ([]byte, error)
}
