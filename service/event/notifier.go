package event

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/samuraitruong/guardian/internal/logger"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/messaging"
)

// Notifier is the outbound port blocks write state changes and errors to.
// Implementations must never fail the originating operation: delivery
// problems are swallowed at this boundary.
type Notifier interface {
	// BlockUpdated announces a block state change to one recipient.
	BlockUpdated(recipient model.User, blockID string, state interface{}, tag string)

	// BlockFailed announces a block action failure to one recipient.
	BlockFailed(recipient model.User, blockType, message string)
}

// QueueNotifier fans notifications out onto the update and error queues.
type QueueNotifier struct {
	updates *Publisher[BlockUpdate]
	errors  *Publisher[BlockError]
	log     zerolog.Logger
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(updates messaging.Queue[Event[BlockUpdate]], errors messaging.Queue[Event[BlockError]]) *QueueNotifier {
	return &QueueNotifier{
		updates: NewPublisher(updates),
		errors:  NewPublisher(errors),
		log:     logger.New("notifier"),
	}
}

// Updates exposes the update publisher for transport-side listeners.
func (n *QueueNotifier) Updates() *Publisher[BlockUpdate] {
	return n.updates
}

// Errors exposes the error publisher for transport-side listeners.
func (n *QueueNotifier) Errors() *Publisher[BlockError] {
	return n.errors
}

// BlockUpdated enqueues an update notification. Errors are logged, never
// returned.
func (n *QueueNotifier) BlockUpdated(recipient model.User, blockID string, state interface{}, tag string) {
	err := n.updates.Publish(context.Background(), NewEvent(BlockUpdate{
		Recipient: recipient,
		BlockID:   blockID,
		State:     state,
		Tag:       tag,
	}))
	if err != nil {
		n.log.Warn().Err(err).Str("blockId", blockID).Str("recipient", recipient.ID).Msg("dropped block update")
	}
}

// BlockFailed enqueues an error notification. Errors are logged, never
// returned.
func (n *QueueNotifier) BlockFailed(recipient model.User, blockType, message string) {
	err := n.errors.Publish(context.Background(), NewEvent(BlockError{
		Recipient: recipient,
		BlockType: blockType,
		Message:   message,
	}))
	if err != nil {
		n.log.Warn().Err(err).Str("blockType", blockType).Str("recipient", recipient.ID).Msg("dropped block error")
	}
}

var _ Notifier = (*QueueNotifier)(nil)
