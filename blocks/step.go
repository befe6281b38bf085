package blocks

import (
	"context"
	"sync"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// Step sequences its children: per user exactly one child is active at a
// time and RunNext/RunTarget advance the cursor. The cursor map is durable,
// so a rebuilt tree resumes every user where they left off.
type Step struct {
	*block.BaseBlock
	mu    sync.Mutex
	index map[string]int
}

func newStep() *Step {
	return &Step{BaseBlock: block.NewBase()}
}

// Init prepares the per-user cursor map.
func (s *Step) Init() error {
	s.index = map[string]int{}
	return nil
}

// IsChildActive reports whether the child is the user's current step.
func (s *Step) IsChildActive(child block.Block, user model.User) bool {
	position := -1
	for i, candidate := range s.Children() {
		if candidate.UUID() == child.UUID() {
			position = i
			break
		}
	}
	if position == -1 {
		return false
	}
	return position == s.cursor(user)
}

// ChangeStep moves the user's cursor: to target when given, otherwise one
// step forward. Past the last child the cursor wraps only when the cyclic
// option is set. Every move is persisted and announced.
func (s *Step) ChangeStep(ctx context.Context, user model.User, _ interface{}, target block.Block) error {
	children := s.Children()
	if len(children) == 0 {
		return nil
	}
	next := s.cursor(user) + 1
	if target != nil {
		next = -1
		for i, candidate := range children {
			if candidate.UUID() == target.UUID() {
				next = i
				break
			}
		}
		if next == -1 {
			return block.ErrNotSupported
		}
	}
	if next >= len(children) {
		if !s.cyclic() {
			return nil
		}
		next = 0
	}
	s.mu.Lock()
	s.index[user.ID] = next
	s.mu.Unlock()
	s.UpdateBlock(ctx, map[string]interface{}{"index": next}, user, s.Tag())
	return nil
}

// GetData returns the user's cursor and the step sequence.
func (s *Step) GetData(_ context.Context, user model.User) (interface{}, error) {
	var children []interface{}
	for _, child := range s.Children() {
		children = append(children, map[string]interface{}{
			"id":        child.UUID(),
			"blockType": child.BlockType(),
			"tag":       child.Tag(),
		})
	}
	return map[string]interface{}{
		"id":         s.UUID(),
		"blockType":  s.BlockType(),
		"uiMetaData": s.Options()["uiMetaData"],
		"index":      s.cursor(user),
		"blocks":     children,
	}, nil
}

// SnapshotState exports the cursor map.
func (s *Step) SnapshotState() (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.index) == 0 {
		return nil, nil
	}
	cursors := make(map[string]interface{}, len(s.index))
	for userID, position := range s.index {
		cursors[userID] = position
	}
	return map[string]interface{}{"index": cursors}, nil
}

// ApplyState seeds the cursor map from a durable snapshot.
func (s *Step) ApplyState(snapshot map[string]interface{}) error {
	cursors, ok := snapshot["index"].(map[string]interface{})
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		s.index = map[string]int{}
	}
	for userID, value := range cursors {
		if position, ok := value.(float64); ok {
			s.index[userID] = int(position)
		}
	}
	return nil
}

func (s *Step) cursor(user model.User) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index[user.ID]
}

func (s *Step) cyclic() bool {
	value, ok := s.Options()["cyclic"].(bool)
	return ok && value
}
