package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/store"
)

const (
	titleLimit   = 40
	previewLimit = 80

	exportTimeFormat = "2006-01-02 15:04:05"
)

// ConversationService is the directory over conversations: create, list,
// search, pin and delete, plus the derived display fields. Preview and
// message count are recomputed on every call so they can never go stale
// against the message state.
type ConversationService struct {
	store store.Store
}

func NewConversationService(st store.Store) *ConversationService {
	return &ConversationService{store: st}
}

// Create starts a conversation. With an empty title the final title is
// derived later from the first user message.
func (s *ConversationService) Create(initialTitle string) (*models.Conversation, error) {
	now := time.Now()
	conv := &models.Conversation{
		ID:         uuid.New().String(),
		Title:      initialTitle,
		CreatedAt:  now,
		UpdatedAt:  now,
		MessageIDs: []string{},
	}
	if err := s.store.PutConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *ConversationService) Get(id string) (*models.Conversation, error) {
	return s.store.GetConversation(id)
}

func (s *ConversationService) Rename(id, title string) error {
	conv, err := s.store.GetConversation(id)
	if err != nil {
		return err
	}
	conv.Title = title
	if err := s.store.PutConversation(conv); err != nil {
		return fmt.Errorf("failed to rename conversation: %w", err)
	}
	return nil
}

func (s *ConversationService) TogglePin(id string) error {
	conv, err := s.store.GetConversation(id)
	if err != nil {
		return err
	}
	conv.IsPinned = !conv.IsPinned
	if err := s.store.PutConversation(conv); err != nil {
		return fmt.Errorf("failed to toggle pin: %w", err)
	}
	return nil
}

// Delete removes the conversation and every message it owns, leaving no
// orphans behind.
func (s *ConversationService) Delete(id string) error {
	if _, err := s.store.GetConversation(id); err != nil {
		return err
	}
	messages, err := s.store.ListMessages()
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if msg.ConversationID != id {
			continue
		}
		if err := s.store.DeleteMessage(msg.ID); err != nil {
			return fmt.Errorf("failed to delete message %s: %w", msg.ID, err)
		}
	}
	if err := s.store.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// List returns all conversations, pinned first, ties broken by most
// recent update.
func (s *ConversationService) List() ([]models.Conversation, error) {
	conversations, err := s.store.ListConversations()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(conversations, func(i, j int) bool {
		if conversations[i].IsPinned != conversations[j].IsPinned {
			return conversations[i].IsPinned
		}
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

// Search filters the directory listing by case-insensitive substring
// match on the title. The listing order is preserved, not re-ranked.
func (s *ConversationService) Search(query string) ([]models.Conversation, error) {
	conversations, err := s.List()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var matches []models.Conversation
	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), q) {
			matches = append(matches, conv)
		}
	}
	return matches, nil
}

// Preview returns the latest message content truncated for display.
func (s *ConversationService) Preview(id string) (string, error) {
	conv, err := s.store.GetConversation(id)
	if err != nil {
		return "", err
	}
	for i := len(conv.MessageIDs) - 1; i >= 0; i-- {
		msg, err := s.store.GetMessage(conv.MessageIDs[i])
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", err
		}
		return truncate(msg.Content, previewLimit), nil
	}
	return "", nil
}

// MessageCount returns the number of live messages in the conversation.
func (s *ConversationService) MessageCount(id string) (int, error) {
	conv, err := s.store.GetConversation(id)
	if err != nil {
		return 0, err
	}
	return len(conv.MessageIDs), nil
}

// ExportText renders the transcript as "sender (timestamp): content"
// lines in message order. Downstream export renderers depend on this
// exact format and field set.
func (s *ConversationService) ExportText(id string) (string, error) {
	conv, err := s.store.GetConversation(id)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, msgID := range conv.MessageIDs {
		msg, err := s.store.GetMessage(msgID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", err
		}
		fmt.Fprintf(&sb, "%s (%s): %s\n", msg.Sender, msg.Timestamp.Format(exportTimeFormat), msg.Content)
	}
	return sb.String(), nil
}

// DeriveTitle builds a conversation title from its first message.
func DeriveTitle(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "New Chat"
	}
	return truncate(content, titleLimit)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
