// Package blockstate defines the durable per-block state store. A snapshot is
// keyed by (policyID, blockID), written whenever a block with durable fields
// changes and read once per block while a tree is being rebuilt.
package blockstate

import (
	"context"
	"time"
)

// State is one durable snapshot.
type State struct {
	PolicyID string `json:"policyId"`
	BlockID  string `json:"blockId"`
	// Blob is the JSON encoding of whichever fields the block declared
	// durable.
	Blob      []byte    `json:"blob"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists block state snapshots. Upsert-by-key is the only mutation
// primitive; each (policyID, blockID) row is logically owned by exactly one
// block instance issuing ordered writes.
type Store interface {
	// Upsert creates or overwrites the snapshot for (state.PolicyID, state.BlockID).
	Upsert(ctx context.Context, state *State) error

	// Load returns the snapshot for (policyID, blockID) or dao.ErrNotFound.
	Load(ctx context.Context, policyID, blockID string) (*State, error)

	// DeletePolicy removes every snapshot belonging to a policy.
	DeletePolicy(ctx context.Context, policyID string) error
}
