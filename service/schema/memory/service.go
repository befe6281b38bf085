// Package memory provides an in-process schema registry for default wiring
// and tests. Publishing rewrites the IRI to "<iri>@<version>".
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/samuraitruong/guardian/internal/idgen"
	"github.com/samuraitruong/guardian/service/schema"
)

// Service is an in-memory schema.Service.
type Service struct {
	mu      sync.Mutex
	byIRI   map[string]*schema.Schema
	records map[string]*schema.Schema
}

// New creates an empty registry.
func New() *Service {
	return &Service{
		byIRI:   map[string]*schema.Schema{},
		records: map[string]*schema.Schema{},
	}
}

// Add registers a schema record, keyed by IRI.
func (s *Service) Add(record *schema.Schema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = idgen.New()
	}
	if record.Status == "" {
		record.Status = schema.StatusDraft
	}
	s.byIRI[record.IRI] = record
	s.records[record.ID] = record
}

// ByIRI returns the schema registered under iri.
func (s *Service) ByIRI(_ context.Context, iri string) (*schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byIRI[iri]
	if !ok {
		return nil, schema.ErrNotFound
	}
	return record, nil
}

// IncrementVersion bumps the patch component of the schema version.
func (s *Service) IncrementVersion(_ context.Context, iri, owner string) (*schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byIRI[iri]
	if !ok {
		return nil, schema.ErrNotFound
	}
	if record.Status == schema.StatusPublished {
		return record, nil
	}
	record.Owner = owner
	record.Version = bumpPatch(record.Version)
	return record, nil
}

// Publish marks the schema published under a versioned IRI.
func (s *Service) Publish(_ context.Context, id, version, owner string) (*schema.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, schema.ErrNotFound
	}
	oldIRI := record.IRI
	record.Status = schema.StatusPublished
	record.Version = version
	record.Owner = owner
	if !strings.Contains(record.IRI, "@") {
		record.IRI = fmt.Sprintf("%s@%s", record.IRI, version)
	}
	delete(s.byIRI, oldIRI)
	s.byIRI[record.IRI] = record
	return record, nil
}

func bumpPatch(version string) string {
	if version == "" {
		return "1.0.0"
	}
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return version
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return version
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1)
}

var _ schema.Service = (*Service)(nil)
