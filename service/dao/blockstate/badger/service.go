// Package badger provides a BadgerDB-backed block state store for
// deployments that must survive process restarts. Keys are
// "<policyID>/<blockID>", values the JSON snapshot record.
package badger

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/samuraitruong/guardian/internal/clock"
	"github.com/samuraitruong/guardian/service/dao"
	"github.com/samuraitruong/guardian/service/dao/blockstate"
)

// Config holds store configuration.
type Config struct {
	// Path is the directory for the database files. Ignored when InMemory.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// InMemory disables disk persistence, useful for tests.
	InMemory bool `json:"inMemory,omitempty" yaml:"inMemory,omitempty"`
	// SyncWrites forces fsync on every write.
	SyncWrites bool `json:"syncWrites,omitempty" yaml:"syncWrites,omitempty"`
}

// Service is a BadgerDB blockstate.Store.
type Service struct {
	db *badger.DB
}

// New opens the database described by config.
func New(config Config) (*Service, error) {
	opts := badger.DefaultOptions(config.Path).
		WithInMemory(config.InMemory).
		WithSyncWrites(config.SyncWrites).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Service{db: db}, nil
}

// Close releases the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

func key(policyID, blockID string) []byte {
	return []byte(policyID + "/" + blockID)
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
	value, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(state.PolicyID, state.BlockID), value)
	})
}

// Load returns a snapshot or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, policyID, blockID string) (*blockstate.State, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(policyID, blockID))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, dao.ErrNotFound
		}
		return nil, err
	}
	ret := &blockstate.State{}
	if err = json.Unmarshal(value, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// DeletePolicy removes every snapshot belonging to a policy.
func (s *Service) DeletePolicy(_ context.Context, policyID string) error {
	prefix := []byte(policyID + "/")
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ blockstate.Store = (*Service)(nil)
