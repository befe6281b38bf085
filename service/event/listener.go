package event

import (
	"context"
)

// Listener runs a handler for every event consumed from a publisher until
// stopped.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
}

// NewListener creates a listener; call Start to begin consuming.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{publisher: publisher, handler: handler}
}

// Start begins consuming events on a background goroutine.
func (l *Listener[T]) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go func() {
		for {
			event, err := l.publisher.Consume(ctx)
			if err != nil {
				return
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}

// Stop terminates the consuming goroutine.
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}
