// Package conversation provides the conversation store and the context
// window builder that selects which history accompanies each turn.
//
// Information Hiding:
// - Store implementations hide their backing structure
// - Window selection policy hidden behind Builder
// - Importance scoring heuristics encapsulated

package conversation

import (
	"context"
	"sync"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

// MessageUpdate carries the optional fields of an update. Nil fields
// are left untouched.
type MessageUpdate struct {
	Content    *string
	ToolStatus *model.ToolStatus
}

// Store owns the messages of one conversation. All operations are
// idempotent with respect to repeated identical calls.
type Store interface {
	// AddMessage inserts a message. Re-adding an existing id is a no-op.
	AddMessage(ctx context.Context, msg model.Message) error

	// UpdateMessage applies the non-nil fields of update to the message.
	UpdateMessage(ctx context.Context, id string, update MessageUpdate) error

	// CompleteStreamingMessage finalizes a streaming message, optionally
	// recording token usage for the turn that produced it.
	CompleteStreamingMessage(ctx context.Context, id string, usage *model.TokenUsage) error

	// RemoveMessage deletes a message. Removing an unknown id is a no-op.
	RemoveMessage(ctx context.Context, id string) error

	// Message returns a message by id.
	Message(ctx context.Context, id string) (model.Message, bool, error)

	// Messages returns all messages in insertion order.
	Messages(ctx context.Context) ([]model.Message, error)
}

// InMemoryStore implements Store using a slice guarded by a RWMutex.
// Data is lost when the process terminates.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages []model.Message
	index    map[string]int
	usage    map[string]model.TokenUsage
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		index: make(map[string]int),
		usage: make(map[string]model.TokenUsage),
	}
}

// AddMessage inserts a message unless the id is already present.
func (s *InMemoryStore) AddMessage(ctx context.Context, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[msg.ID]; ok {
		return nil
	}
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return nil
}

// UpdateMessage applies the non-nil fields of update.
func (s *InMemoryStore) UpdateMessage(ctx context.Context, id string, update MessageUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil
	}
	if update.Content != nil {
		s.messages[i].Content = *update.Content
	}
	if update.ToolStatus != nil {
		s.messages[i].ToolStatus = *update.ToolStatus
	}
	return nil
}

// CompleteStreamingMessage clears the streaming flag and records usage.
func (s *InMemoryStore) CompleteStreamingMessage(ctx context.Context, id string, usage *model.TokenUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil
	}
	s.messages[i].IsStreaming = false
	if usage != nil {
		s.usage[id] = *usage
	}
	return nil
}

// RemoveMessage deletes a message by id.
func (s *InMemoryStore) RemoveMessage(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil
	}
	s.messages = append(s.messages[:i], s.messages[i+1:]...)
	delete(s.index, id)
	delete(s.usage, id)
	for j := i; j < len(s.messages); j++ {
		s.index[s.messages[j].ID] = j
	}
	return nil
}

// Message returns a copy of the message with the given id.
func (s *InMemoryStore) Message(ctx context.Context, id string) (model.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Message{}, false, nil
	}
	return s.messages[i], true, nil
}

// Messages returns a copy of all messages in insertion order.
func (s *InMemoryStore) Messages(ctx context.Context) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]model.Message, len(s.messages))
	copy(copied, s.messages)
	return copied, nil
}

// Usage returns the token usage recorded for a finalized message.
func (s *InMemoryStore) Usage(id string) (model.TokenUsage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usage[id]
	return u, ok
}

// Verify InMemoryStore implements Store
var _ Store = (*InMemoryStore)(nil)
