package store

import (
	"ai_chat_go_backend/internal/models"
)

// FlagSeeded is the persisted marker gating demo seeding.
const FlagSeeded = "seeded"

// Store is the durable persistence contract shared by every component.
// Writes are write-through: durable before the call returns. Absent
// records are reported as apperrors.ErrNotFound, and a stored record
// that cannot be decoded is treated as absent rather than fatal, so one
// corrupted entry never blocks the rest of the store from loading.
type Store interface {
	GetConversation(id string) (*models.Conversation, error)
	ListConversations() ([]models.Conversation, error)
	PutConversation(c *models.Conversation) error
	DeleteConversation(id string) error

	GetMessage(id string) (*models.Message, error)
	ListMessages() ([]models.Message, error)
	PutMessage(m *models.Message) error
	DeleteMessage(id string) error

	GetUsage(date string) (*models.UsageCounter, error)
	PutUsage(u *models.UsageCounter) error

	GetFlag(key string) (bool, error)
	SetFlag(key string) error
}
