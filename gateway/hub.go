package gateway

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/samuraitruong/guardian/internal/logger"
	"github.com/samuraitruong/guardian/service/event"
)

// conn is the subset of *websocket.Conn the hub uses; tests substitute it.
type conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub routes block notifications to the websocket connections of their
// recipients. A user may hold several connections; delivery to absent users
// is dropped, notifications carry no offline guarantee.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[conn]bool
	log   zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: map[string]map[conn]bool{},
		log:   logger.New("gateway.hub"),
	}
}

// Attach registers a connection for a user.
func (h *Hub) Attach(userID string, c conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = map[conn]bool{}
	}
	h.conns[userID][c] = true
}

// Detach removes and closes a connection.
func (h *Hub) Detach(userID string, c conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	_ = c.Close()
}

// send writes a payload to every connection of the user.
func (h *Hub) send(userID string, payload interface{}) {
	h.mu.RLock()
	targets := make([]conn, 0, len(h.conns[userID]))
	for c := range h.conns[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		if err := c.WriteJSON(payload); err != nil {
			h.log.Debug().Err(err).Str("userId", userID).Msg("dropped websocket delivery")
		}
	}
}

// wireUpdate is the websocket frame for block updates and errors.
type wireUpdate struct {
	Type      string      `json:"type"`
	BlockID   string      `json:"blockId,omitempty"`
	BlockType string      `json:"blockType,omitempty"`
	Tag       string      `json:"tag,omitempty"`
	State     interface{} `json:"state,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// OnBlockUpdate delivers an update event to its recipient's connections.
func (h *Hub) OnBlockUpdate(e *event.Event[event.BlockUpdate]) {
	h.send(e.Data.Recipient.ID, &wireUpdate{
		Type:    "update-event",
		BlockID: e.Data.BlockID,
		Tag:     e.Data.Tag,
		State:   e.Data.State,
	})
}

// OnBlockError delivers an error event to its recipient's connections.
func (h *Hub) OnBlockError(e *event.Event[event.BlockError]) {
	h.send(e.Data.Recipient.ID, &wireUpdate{
		Type:      "error-event",
		BlockType: e.Data.BlockType,
		Message:   e.Data.Message,
	})
}
