package blocks

import (
	"context"
	"sync"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// Pagination is an addon carrying a per-user window over its parent's data
// set. The window survives rebuilds.
type Pagination struct {
	*block.BaseBlock
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	Size         int `json:"size"`
	ItemsPerPage int `json:"itemsPerPage"`
	Page         int `json:"page"`
}

func newPagination() *Pagination {
	return &Pagination{BaseBlock: block.NewBase()}
}

// Init prepares the per-user window map.
func (p *Pagination) Init() error {
	p.windows = map[string]*window{}
	return nil
}

// GetData returns the user's current window.
func (p *Pagination) GetData(_ context.Context, user model.User) (interface{}, error) {
	current := p.window(user)
	return map[string]interface{}{
		"size":         current.Size,
		"itemsPerPage": current.ItemsPerPage,
		"page":         current.Page,
	}, nil
}

// SetData moves or resizes the user's window.
func (p *Pagination) SetData(ctx context.Context, user model.User, data interface{}) (interface{}, error) {
	payload, ok := asMap(data)
	if !ok {
		return nil, ErrInvalidInput
	}
	p.mu.Lock()
	current := p.windowLocked(user)
	if value, ok := asInt(payload["itemsPerPage"]); ok {
		current.ItemsPerPage = value
	}
	if value, ok := asInt(payload["page"]); ok {
		current.Page = value
	}
	if value, ok := asInt(payload["size"]); ok {
		current.Size = value
	}
	p.mu.Unlock()
	if err := p.SaveState(ctx); err != nil {
		return nil, err
	}
	return p.GetData(ctx, user)
}

// SnapshotState exports every user window.
func (p *Pagination) SnapshotState() (map[string]interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.windows) == 0 {
		return nil, nil
	}
	snapshot := make(map[string]interface{}, len(p.windows))
	for userID, current := range p.windows {
		snapshot[userID] = map[string]interface{}{
			"size":         current.Size,
			"itemsPerPage": current.ItemsPerPage,
			"page":         current.Page,
		}
	}
	return snapshot, nil
}

// ApplyState seeds the window map from a durable snapshot.
func (p *Pagination) ApplyState(snapshot map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.windows == nil {
		p.windows = map[string]*window{}
	}
	for userID, value := range snapshot {
		fields, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		current := &window{ItemsPerPage: defaultItemsPerPage}
		if v, ok := asInt(fields["size"]); ok {
			current.Size = v
		}
		if v, ok := asInt(fields["itemsPerPage"]); ok {
			current.ItemsPerPage = v
		}
		if v, ok := asInt(fields["page"]); ok {
			current.Page = v
		}
		p.windows[userID] = current
	}
	return nil
}

const defaultItemsPerPage = 10

func (p *Pagination) window(user model.User) *window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windowLocked(user)
}

func (p *Pagination) windowLocked(user model.User) *window {
	current, ok := p.windows[user.ID]
	if !ok {
		current = &window{ItemsPerPage: defaultItemsPerPage}
		p.windows[user.ID] = current
	}
	return current
}

func asInt(value interface{}) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	}
	return 0, false
}
