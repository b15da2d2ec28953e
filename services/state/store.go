package state

import (
	"context"
	"encoding/json"
	"sync"

	"flybot/models"
)

// Store keeps conversation state between turns.
type Store interface {
	// Get returns the saved state, or a fresh one when nothing is saved.
	Get(ctx context.Context, key string) (*models.ConversationState, error)
	Set(ctx context.Context, key string, st *models.ConversationState) error
	Clear(ctx context.Context, key string) error
}

// ConversationKey is the storage key for a conversation on a channel.
func ConversationKey(channelID, conversationID string) string {
	return channelID + "/conversations/" + conversationID
}

// MemoryStore keeps state in process. Values are stored encoded so callers
// never share a state object across turns.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*models.ConversationState, error) {
	s.mu.RLock()
	b, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return &models.ConversationState{}, nil
	}
	var st models.ConversationState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, st *models.ConversationState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
