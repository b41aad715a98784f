package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai_chat_go_backend/internal/models"
)

type seedConversation struct {
	title    string
	pinned   bool
	age      time.Duration
	question string
	answer   string
}

var demoConversations = []seedConversation{
	{
		title:    "Writing a Blog Post",
		pinned:   true,
		age:      2 * time.Hour,
		question: "Can you help me write a blog post about productivity?",
		answer:   "I'd be happy to help you with writing! Could you tell me more about the topic, your target audience and the desired length?",
	},
	{
		title:    "Python Code Review",
		age:      24 * time.Hour,
		question: "I have some Python code that needs a review before I merge it.",
		answer:   "I can definitely help with coding! Share the code and tell me what it should accomplish, and I'll review it with you.",
	},
	{
		title:    "Marketing Ideas",
		age:      2 * 24 * time.Hour,
		question: "What are some creative marketing strategies for a small business?",
		answer:   "Here are a few directions worth exploring: local partnerships, a referral program, and short-form content that shows your work behind the scenes.",
	},
	{
		title:    "Resume Writing",
		age:      3 * 24 * time.Hour,
		question: "Help me improve my resume for a software engineering role.",
		answer:   "Let's start with the experience section. Lead every bullet with the outcome, then the technology you used to get there.",
	},
	{
		title:    "Recipe Suggestions",
		age:      7 * 24 * time.Hour,
		question: "Can you suggest some healthy dinner recipes?",
		answer:   "Three easy ones to try this week: sheet-pan salmon with vegetables, chickpea curry, and a ten-minute lemon pasta with spinach.",
	},
}

// EnsureSeeded populates an empty store with the demo conversation set so
// the application is usable without prior state. It runs at most once,
// gated by a persisted flag, and is safe to call on every startup.
func EnsureSeeded(s Store) error {
	seeded, err := s.GetFlag(FlagSeeded)
	if err != nil {
		return fmt.Errorf("failed to read seed flag: %w", err)
	}
	if seeded {
		return nil
	}

	now := time.Now()
	for _, seed := range demoConversations {
		asked := now.Add(-seed.age)
		answered := asked.Add(30 * time.Second)

		conv := models.Conversation{
			ID:        uuid.New().String(),
			Title:     seed.title,
			CreatedAt: asked,
			UpdatedAt: answered,
			IsPinned:  seed.pinned,
		}
		question := models.Message{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			Sender:         models.SenderUser,
			Content:        seed.question,
			Rating:         models.RatingNone,
			Timestamp:      asked,
		}
		answer := models.Message{
			ID:             uuid.New().String(),
			ConversationID: conv.ID,
			Sender:         models.SenderAssistant,
			Content:        seed.answer,
			Rating:         models.RatingNone,
			Timestamp:      answered,
		}
		conv.MessageIDs = []string{question.ID, answer.ID}

		if err := s.PutMessage(&question); err != nil {
			return fmt.Errorf("failed to seed message: %w", err)
		}
		if err := s.PutMessage(&answer); err != nil {
			return fmt.Errorf("failed to seed message: %w", err)
		}
		if err := s.PutConversation(&conv); err != nil {
			return fmt.Errorf("failed to seed conversation %q: %w", seed.title, err)
		}
	}

	if err := s.SetFlag(FlagSeeded); err != nil {
		return fmt.Errorf("failed to persist seed flag: %w", err)
	}
	return nil
}
