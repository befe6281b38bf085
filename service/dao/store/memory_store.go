// Package store provides a generic in-memory implementation of dao.Service
// that concrete DAOs embed instead of re-writing identical Save/Load/Delete
// logic per entity type.
package store

import (
	"context"
	"sync"

	"github.com/samuraitruong/guardian/service/dao"
)

// MemoryStore keeps entities of type *T mapped by a comparable key K obtained
// from the supplied keySelector. It deliberately contains no business logic;
// higher-level DAOs install a matcher to interpret List filter parameters.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
	matcher     func(*T, *dao.Parameter) bool
}

// NewMemoryStore creates a MemoryStore. keySelector extracts the entity key
// (usually the ID field) from a value.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// WithMatcher installs the predicate List applies per filter parameter. A
// store without a matcher rejects every filtered List.
func (s *MemoryStore[K, T]) WithMatcher(matcher func(*T, *dao.Parameter) bool) *MemoryStore[K, T] {
	s.matcher = matcher
	return s
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns a record by key.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return v, nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns all stored records matching every filter parameter.
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		if s.matches(v, parameters) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStore[K, T]) matches(v *T, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if s.matcher == nil || !s.matcher(v, parameter) {
			return false
		}
	}
	return true
}
