// Package dao defines the persistence contract shared by the engine's stores
// (policy definitions, block state). Implementations live in sub-packages;
// the engine only ever depends on this interface.
package dao

import (
	"context"
)

// Service is a generic key/value persistence contract.
type Service[K comparable, T any] interface {
	// Save stores or overwrites an entity.
	Save(ctx context.Context, t *T) error

	// Load returns an entity by key, or ErrNotFound.
	Load(ctx context.Context, id K) (*T, error)

	// Delete removes an entity by key.
	Delete(ctx context.Context, id K) error

	// List returns all entities matching the optional filter parameters.
	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
