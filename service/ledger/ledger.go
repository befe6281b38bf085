// Package ledger defines the append-only, externally ordered message log the
// lifecycle coordinator anchors published policy versions to.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrTopicNotFound is returned when reading an unknown topic.
var ErrTopicNotFound = errors.New("ledger: topic not found")

// ErrMessageNotFound is returned when reading an unknown message id.
var ErrMessageNotFound = errors.New("ledger: message not found")

// Message is one entry of a topic, in consensus order.
type Message struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Index     int       `json:"index"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Service is the ledger collaborator contract.
type Service interface {
	// NewTopic allocates a new topic and returns its id.
	NewTopic(ctx context.Context, memo string) (string, error)

	// Publish appends a message to a topic and returns the message id.
	Publish(ctx context.Context, topic string, payload []byte) (string, error)

	// ReadOrdered returns the full topic history in consensus order.
	ReadOrdered(ctx context.Context, topic string) ([]*Message, error)

	// Read returns a single message by id.
	Read(ctx context.Context, messageID string) (*Message, error)
}
