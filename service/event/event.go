// Package event carries block state changes and block errors from the engine
// to external consumers. Delivery is fire-and-forget: recipients not
// currently listening simply miss the notification and must re-fetch current
// state through a pull.
package event

import (
	"time"

	"github.com/samuraitruong/guardian/model"
)

// BlockUpdate notifies one recipient that a block's state changed.
type BlockUpdate struct {
	Recipient model.User  `json:"recipient"`
	BlockID   string      `json:"blockId"`
	State     interface{} `json:"state,omitempty"`
	Tag       string      `json:"tag,omitempty"`
}

// BlockError notifies one recipient that an action on a block failed.
type BlockError struct {
	Recipient model.User `json:"recipient"`
	BlockType string     `json:"blockType"`
	Message   string     `json:"message"`
}

// Event is the queued envelope around a payload.
type Event[T any] struct {
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent wraps a payload in an envelope.
func NewEvent[T any](data T) *Event[T] {
	return &Event[T]{
		CreatedAt: time.Now(),
		Data:      data,
	}
}
