// Package messaging defines the queue port the notification fan-out writes
// to. Delivery past the queue is the transport collaborator's concern; the
// engine treats every publish as fire-and-forget.
package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by Publish when the queue cannot accept another
// message. Notification callers treat it as a dropped delivery.
var ErrQueueFull = errors.New("messaging: queue full")

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue. Publish never
	// blocks the caller; a saturated queue returns ErrQueueFull.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure in processing this message.
	Nack(err error) error
}
