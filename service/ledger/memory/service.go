// Package memory provides an in-process ledger used by default wiring and
// tests: ordering is insertion order, message ids are "<topic>/<index>".
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/samuraitruong/guardian/internal/clock"
	"github.com/samuraitruong/guardian/internal/idgen"
	"github.com/samuraitruong/guardian/service/ledger"
)

// Service is an in-memory ledger.Service.
type Service struct {
	mu     sync.RWMutex
	topics map[string][]*ledger.Message
}

// New creates a new in-memory ledger.
func New() *Service {
	return &Service{topics: map[string][]*ledger.Message{}}
}

// NewTopic allocates a new topic.
func (s *Service) NewTopic(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic := idgen.New()
	s.topics[topic] = nil
	return topic, nil
}

// Publish appends a message to a topic.
func (s *Service) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	if topic == "" {
		return "", ledger.ErrTopicNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	index := len(s.topics[topic])
	message := &ledger.Message{
		ID:        fmt.Sprintf("%s/%d", topic, index),
		Topic:     topic,
		Index:     index,
		Payload:   append([]byte(nil), payload...),
		Timestamp: clock.Now(),
	}
	s.topics[topic] = append(s.topics[topic], message)
	return message.ID, nil
}

// ReadOrdered returns the full topic history in order.
func (s *Service) ReadOrdered(_ context.Context, topic string) ([]*ledger.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages, ok := s.topics[topic]
	if !ok {
		return nil, ledger.ErrTopicNotFound
	}
	return append([]*ledger.Message(nil), messages...), nil
}

// Read returns a single message by id.
func (s *Service) Read(_ context.Context, messageID string) (*ledger.Message, error) {
	idx := strings.LastIndex(messageID, "/")
	if idx <= 0 {
		return nil, ledger.ErrMessageNotFound
	}
	topic := messageID[:idx]
	index, err := strconv.Atoi(messageID[idx+1:])
	if err != nil {
		return nil, ledger.ErrMessageNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages, ok := s.topics[topic]
	if !ok || index < 0 || index >= len(messages) {
		return nil, ledger.ErrMessageNotFound
	}
	return messages[index], nil
}

var _ ledger.Service = (*Service)(nil)
