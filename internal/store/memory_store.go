package store

import (
	"sort"
	"sync"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
)

// MemoryStore is a map-backed Store used by tests and for throwaway
// sessions. It honors the same contract as GormStore, including list
// ordering (conversations by creation time, messages by timestamp).
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string]models.Conversation
	messages      map[string]models.Message
	usage         map[string]models.UsageCounter
	flags         map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]models.Conversation),
		messages:      make(map[string]models.Message),
		usage:         make(map[string]models.UsageCounter),
		flags:         make(map[string]bool),
	}
}

func (s *MemoryStore) GetConversation(id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, apperrors.NotFoundf("conversation %s", id)
	}
	conv.MessageIDs = append([]string(nil), conv.MessageIDs...)
	return &conv, nil
}

func (s *MemoryStore) ListConversations() ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversations := make([]models.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		conv.MessageIDs = append([]string(nil), conv.MessageIDs...)
		conversations = append(conversations, conv)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].CreatedAt.Before(conversations[j].CreatedAt)
	})
	return conversations, nil
}

func (s *MemoryStore) PutConversation(c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := *c
	conv.MessageIDs = append([]string(nil), c.MessageIDs...)
	s.conversations[c.ID] = conv
	return nil
}

func (s *MemoryStore) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
	return nil
}

func (s *MemoryStore) GetMessage(id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[id]
	if !ok {
		return nil, apperrors.NotFoundf("message %s", id)
	}
	return &msg, nil
}

func (s *MemoryStore) ListMessages() ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := make([]models.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		messages = append(messages, msg)
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (s *MemoryStore) PutMessage(m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ID] = *m
	return nil
}

func (s *MemoryStore) DeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, id)
	return nil
}

func (s *MemoryStore) GetUsage(date string) (*models.UsageCounter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usage[date]
	if !ok {
		return nil, apperrors.NotFoundf("usage counter %s", date)
	}
	return &u, nil
}

func (s *MemoryStore) PutUsage(u *models.UsageCounter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[u.Date] = *u
	return nil
}

func (s *MemoryStore) GetFlag(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[key], nil
}

func (s *MemoryStore) SetFlag(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[key] = true
	return nil
}
