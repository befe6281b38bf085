// Package memory provides an in-process content store. References are the
// hex SHA3-256 of the content, so identical blobs deduplicate naturally.
package memory

import (
	"context"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/samuraitruong/guardian/service/storage"
)

// Service is an in-memory storage.Service.
type Service struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new in-memory content store.
func New() *Service {
	return &Service{blobs: map[string][]byte{}}
}

// Put stores a blob under its SHA3-256 reference.
func (s *Service) Put(_ context.Context, data []byte) (string, error) {
	sum := sha3.Sum256(data)
	ref := hex.EncodeToString(sum[:])
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = append([]byte(nil), data...)
	return ref, nil
}

// Get returns the blob stored under ref.
func (s *Service) Get(_ context.Context, ref string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

var _ storage.Service = (*Service)(nil)
