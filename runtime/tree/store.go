package tree

import (
	"sync"

	"github.com/samuraitruong/guardian/runtime/block"
)

// Store is the registry of live trees. Roots are keyed by policy id; every
// node of a registered tree is additionally addressable by uuid.
type Store struct {
	mux    sync.RWMutex
	roots  map[string]block.Block
	byUUID map[string]block.Block
}

// NewStore creates an empty tree store.
func NewStore() *Store {
	return &Store{
		roots:  map[string]block.Block{},
		byUUID: map[string]block.Block{},
	}
}

// Replace installs a freshly built tree for the policy and returns the
// retired root, if any. The caller owns destroying the retired tree once no
// request can still reach it.
func (s *Store) Replace(policyID string, root block.Block) block.Block {
	s.mux.Lock()
	defer s.mux.Unlock()
	retired := s.roots[policyID]
	if retired != nil {
		s.unindexLocked(retired)
	}
	s.roots[policyID] = root
	s.indexLocked(root)
	return retired
}

// Evict removes the policy's tree and returns the retired root, if any.
func (s *Store) Evict(policyID string) block.Block {
	s.mux.Lock()
	defer s.mux.Unlock()
	retired := s.roots[policyID]
	if retired == nil {
		return nil
	}
	s.unindexLocked(retired)
	delete(s.roots, policyID)
	return retired
}

// Get returns the live root for a policy.
func (s *Store) Get(policyID string) (block.Block, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	root, ok := s.roots[policyID]
	if !ok {
		return nil, ErrUnregisteredPolicy
	}
	return root, nil
}

// BlockByUUID returns the live block with the given uuid, searching every
// registered tree.
func (s *Store) BlockByUUID(uuid string) (block.Block, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	node, ok := s.byUUID[uuid]
	if !ok {
		return nil, ErrBlockNotFound
	}
	return node, nil
}

// BlockByTag returns the block tagged with the given name within the
// policy's tree.
func (s *Store) BlockByTag(policyID, tag string) (block.Block, error) {
	root, err := s.Get(policyID)
	if err != nil {
		return nil, err
	}
	var found block.Block
	Walk(root, func(node block.Block) {
		if found == nil && node.Tag() == tag {
			found = node
		}
	})
	if found == nil {
		return nil, ErrBlockNotFound
	}
	return found, nil
}

// Parents returns the ancestor chain of a block, nearest first, the root
// last.
func (s *Store) Parents(uuid string) ([]block.Block, error) {
	node, err := s.BlockByUUID(uuid)
	if err != nil {
		return nil, err
	}
	var chain []block.Block
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		chain = append(chain, parent)
	}
	return chain, nil
}

func (s *Store) indexLocked(root block.Block) {
	Walk(root, func(node block.Block) {
		s.byUUID[node.UUID()] = node
	})
}

func (s *Store) unindexLocked(root block.Block) {
	Walk(root, func(node block.Block) {
		delete(s.byUUID, node.UUID())
	})
}

// Walk visits the block and all descendants depth-first, pre-order, in
// registration order.
func Walk(node block.Block, visit func(block.Block)) {
	if node == nil {
		return
	}
	visit(node)
	for _, child := range node.Children() {
		Walk(child, visit)
	}
}
