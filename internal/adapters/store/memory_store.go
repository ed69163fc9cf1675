// Package store provides ConversationStore implementations backed by
// process memory or Redis.
package store

import (
	"context"
	"sync"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/repositories"
)

// MemoryStore keeps conversations in a process-local map. Suitable for a
// single-instance deployment; state is lost on restart.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]*entities.Conversation
}

// NewMemoryStore creates an empty in-memory conversation store.
func NewMemoryStore() repositories.ConversationStore {
	return &MemoryStore{
		conversations: make(map[string]*entities.Conversation),
	}
}

// Get returns the conversation for the user, or (nil, nil) when absent.
func (s *MemoryStore) Get(_ context.Context, userID string) (*entities.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[userID]
	if !ok {
		return nil, nil
	}
	return conv, nil
}

// Put stores the conversation, replacing any existing one for the user.
func (s *MemoryStore) Put(_ context.Context, conversation *entities.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations[conversation.UserID] = conversation
	return nil
}

// Delete removes the conversation for the user. Deleting a missing
// conversation is not an error.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, userID)
	return nil
}
