// Package schema defines the schema collaborator the publish guard consults:
// every schema a descriptor tree references must itself be published before
// the policy goes live.
package schema

import (
	"context"
	"errors"
)

// Schema lifecycle states.
const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
)

// ErrNotFound is returned for unknown schema IRIs or ids.
var ErrNotFound = errors.New("schema: not found")

// Schema is the subset of a schema record the engine consumes.
type Schema struct {
	ID      string `json:"id"`
	IRI     string `json:"iri"`
	Version string `json:"version,omitempty"`
	Status  string `json:"status,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// Service is the schema collaborator contract.
type Service interface {
	// ByIRI returns the schema a descriptor references.
	ByIRI(ctx context.Context, iri string) (*Schema, error)

	// IncrementVersion bumps the schema's version ahead of publishing and
	// returns the updated record.
	IncrementVersion(ctx context.Context, iri, owner string) (*Schema, error)

	// Publish publishes the schema and returns the record with its new IRI.
	Publish(ctx context.Context, id, version, owner string) (*Schema, error)
}
