package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/store"
)

// MessageService owns the message lifecycle: create, delete, rate and
// regenerate, preserving conversation ordering and referential integrity.
type MessageService struct {
	store     store.Store
	responder Responder
}

func NewMessageService(st store.Store, responder Responder) *MessageService {
	return &MessageService{store: st, responder: responder}
}

// Create appends a message to a conversation and refreshes its
// UpdatedAt. A conversation still carrying an empty title takes one
// derived from the first user message.
func (s *MessageService) Create(conversationID string, sender models.Sender, content string) (*models.Message, error) {
	conv, err := s.store.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		Rating:         models.RatingNone,
		Timestamp:      time.Now(),
	}
	if err := s.store.PutMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	conv.MessageIDs = append(conv.MessageIDs, msg.ID)
	conv.UpdatedAt = msg.Timestamp
	if conv.Title == "" && sender == models.SenderUser {
		conv.Title = DeriveTitle(content)
	}
	if err := s.store.PutConversation(conv); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	return msg, nil
}

func (s *MessageService) Get(id string) (*models.Message, error) {
	return s.store.GetMessage(id)
}

// ListByConversation returns the conversation's messages in display
// order, i.e. the order of its MessageIDs.
func (s *MessageService) ListByConversation(conversationID string) ([]models.Message, error) {
	conv, err := s.store.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	messages := make([]models.Message, 0, len(conv.MessageIDs))
	for _, id := range conv.MessageIDs {
		msg, err := s.store.GetMessage(id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

// Delete purges a message and unlinks it from its conversation. The
// remaining entries keep their relative order.
func (s *MessageService) Delete(id string) error {
	msg, err := s.store.GetMessage(id)
	if err != nil {
		return err
	}

	conv, err := s.store.GetConversation(msg.ConversationID)
	if err == nil {
		conv.MessageIDs = removeID(conv.MessageIDs, id)
		conv.UpdatedAt = time.Now()
		if err := s.store.PutConversation(conv); err != nil {
			return fmt.Errorf("failed to update conversation: %w", err)
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	if err := s.store.DeleteMessage(id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// Rate records feedback on an assistant message. Only assistant messages
// are ratable.
func (s *MessageService) Rate(id string, rating models.Rating) error {
	if !models.ValidRating(rating) {
		return apperrors.InvalidOperationf("rating %q is not one of up, down, none", rating)
	}
	msg, err := s.store.GetMessage(id)
	if err != nil {
		return err
	}
	if msg.Sender != models.SenderAssistant {
		return apperrors.InvalidOperationf("message %s was not sent by the assistant", id)
	}

	msg.Rating = rating
	if err := s.store.PutMessage(msg); err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	conv, err := s.store.GetConversation(msg.ConversationID)
	if err != nil {
		return err
	}
	conv.UpdatedAt = time.Now()
	if err := s.store.PutConversation(conv); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return nil
}

// Regenerate replaces an assistant message with a freshly generated one
// for the same preceding user message. All validation happens before
// anything is deleted; once the old message is gone, a generation
// failure leaves the conversation without a replacement and the caller
// may retry. The triggering user message is never touched.
func (s *MessageService) Regenerate(ctx context.Context, id string) (*models.Message, error) {
	msg, err := s.store.GetMessage(id)
	if err != nil {
		return nil, err
	}
	if msg.Sender != models.SenderAssistant {
		return nil, apperrors.InvalidOperationf("message %s was not sent by the assistant", id)
	}
	conv, err := s.store.GetConversation(msg.ConversationID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(conv.MessageIDs, id)
	if idx <= 0 {
		return nil, apperrors.InvalidOperationf("message %s has no preceding user message", id)
	}
	prev, err := s.store.GetMessage(conv.MessageIDs[idx-1])
	if err != nil {
		return nil, err
	}
	if prev.Sender != models.SenderUser {
		return nil, apperrors.InvalidOperationf("message %s has no preceding user message", id)
	}

	history, err := s.ListByConversation(conv.ID)
	if err != nil {
		return nil, err
	}
	// Prior turns exclude both the reply being replaced and the
	// triggering user message, which travels as the latest content.
	if idx-1 < len(history) {
		history = history[:idx-1]
	}

	if err := s.Delete(id); err != nil {
		return nil, err
	}

	reply, err := s.responder.Generate(ctx, history, prev.Content)
	if err != nil {
		log.Warn().Err(err).Str("conversation", conv.ID).Msg("Reply generation failed; previous reply already removed")
		if errors.Is(err, apperrors.ErrGenerationFailed) {
			return nil, err
		}
		return nil, apperrors.GenerationFailedf(err)
	}
	return s.Create(conv.ID, models.SenderAssistant, reply)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
