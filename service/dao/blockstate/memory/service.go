// Package memory provides the in-memory block state store.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/samuraitruong/guardian/internal/clock"
	"github.com/samuraitruong/guardian/service/dao"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
)

// Service is an in-memory blockstate.Store.
type Service struct {
	mu      sync.RWMutex
	records map[string]*blockstate.State
}

// New creates a new in-memory block state store.
func New() *Service {
	return &Service{records: make(map[string]*blockstate.State)}
}

func key(policyID, blockID string) string {
	return policyID + "/" + blockID
}

// Upsert creates or overwrites a snapshot.
func (s *Service) Upsert(_ context.Context, state *blockstate.State) error {
	if state == nil {
		return dao.ErrNilEntity
	}
	if state.PolicyID == "" || state.BlockID == "" {
		return dao.ErrInvalidID
	}
	state.UpdatedAt = clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key(state.PolicyID, state.BlockID)] = state
	return nil
}

// Load returns a snapshot or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, policyID, blockID string) (*blockstate.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.records[key(policyID, blockID)]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return state, nil
}

// DeletePolicy removes every snapshot belonging to a policy.
func (s *Service) DeletePolicy(_ context.Context, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := policyID + "/"
	for k := range s.records {
		if strings.HasPrefix(k, prefix) {
			delete(s.records, k)
		}
	}
	return nil
}

var _ blockstate.Store = (*Service)(nil)
