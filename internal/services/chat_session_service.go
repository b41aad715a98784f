package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/utils/broker"
)

// pendingReply captures the target ids of an in-flight generation at
// issue time, so a late-arriving result can never be applied to the
// wrong conversation.
type pendingReply struct {
	userMessageID string
	cancel        context.CancelFunc
}

// ChatSessionService orchestrates a send: quota gate, user message
// creation, usage accounting and the asynchronous assistant reply. At
// most one reply is pending per conversation; further sends on it are
// rejected until the reply lands so two assistant messages can never be
// appended out of order.
type ChatSessionService struct {
	messages  MessageLifecycle
	quota     QuotaEnforcer
	responder Responder
	broker    *broker.Broker

	mu      sync.Mutex
	pending map[string]pendingReply
}

func NewChatSessionService(messages MessageLifecycle, quota QuotaEnforcer, responder Responder, b *broker.Broker) *ChatSessionService {
	return &ChatSessionService{
		messages:  messages,
		quota:     quota,
		responder: responder,
		broker:    b,
		pending:   make(map[string]pendingReply),
	}
}

// Send records the user message and schedules reply generation. The
// usage counter advances on send regardless of the later reply outcome.
// The reply, or a generation failure, is published on the broker under
// the conversation id.
func (s *ChatSessionService) Send(conversationID, content string) (*models.Message, error) {
	s.mu.Lock()
	if _, busy := s.pending[conversationID]; busy {
		s.mu.Unlock()
		return nil, apperrors.InvalidOperationf("conversation %s is awaiting a reply", conversationID)
	}
	s.mu.Unlock()

	ok, err := s.quota.CanSend()
	if err != nil {
		return nil, fmt.Errorf("failed to check quota: %w", err)
	}
	if !ok {
		return nil, apperrors.QuotaExceededf("daily message limit reached")
	}

	userMsg, err := s.messages.Create(conversationID, models.SenderUser, content)
	if err != nil {
		return nil, err
	}
	if err := s.quota.RecordSend(); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.pending[conversationID] = pendingReply{userMessageID: userMsg.ID, cancel: cancel}
	s.mu.Unlock()

	go s.generateReply(ctx, conversationID, userMsg.ID, content)

	return userMsg, nil
}

func (s *ChatSessionService) generateReply(ctx context.Context, conversationID, userMessageID, content string) {
	defer s.clearPending(conversationID, userMessageID)

	history, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		log.Debug().Err(err).Str("conversation", conversationID).Msg("Skipping reply generation")
		return
	}
	// Prior turns only; the triggering user content travels separately.
	prior := make([]models.Message, 0, len(history))
	for _, msg := range history {
		if msg.ID != userMessageID {
			prior = append(prior, msg)
		}
	}

	reply, err := s.responder.Generate(ctx, prior, content)
	if ctx.Err() != nil {
		// Abandoned while generating; the result must not be applied.
		return
	}
	if err != nil {
		if !errors.Is(err, apperrors.ErrGenerationFailed) {
			err = apperrors.GenerationFailedf(err)
		}
		s.broker.Publish(conversationID, broker.ReplyEvent{ConversationID: conversationID, Err: err})
		return
	}

	asstMsg, err := s.messages.Create(conversationID, models.SenderAssistant, reply)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Debug().Str("conversation", conversationID).Msg("Dropping reply for deleted conversation")
			return
		}
		s.broker.Publish(conversationID, broker.ReplyEvent{ConversationID: conversationID, Err: err})
		return
	}
	s.broker.Publish(conversationID, broker.ReplyEvent{
		ConversationID: conversationID,
		MessageID:      asstMsg.ID,
		Content:        asstMsg.Content,
	})
}

func (s *ChatSessionService) clearPending(conversationID, userMessageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[conversationID]; ok && p.userMessageID == userMessageID {
		delete(s.pending, conversationID)
	}
}

// IsAwaitingReply reports whether a reply generation is in flight for
// the conversation.
func (s *ChatSessionService) IsAwaitingReply(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[conversationID]
	return ok
}

// CancelPending abandons an in-flight generation, e.g. when the user
// navigates away. The late result is discarded, never applied.
func (s *ChatSessionService) CancelPending(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[conversationID]; ok {
		p.cancel()
		delete(s.pending, conversationID)
	}
}
