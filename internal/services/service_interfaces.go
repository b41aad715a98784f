package services

import (
	"context"

	"ai_chat_go_backend/internal/models"
)

// Responder produces the assistant's reply text. It is the external
// collaborator slot: the built-in rule matcher and the Gemini client both
// satisfy it, and a real inference backend can be swapped in without
// touching the other components. history holds the prior turns; the
// latest user content travels separately. A failure must surface as an
// error, never as silent empty content.
type Responder interface {
	Generate(ctx context.Context, history []models.Message, latest string) (string, error)
}

// QuotaEnforcer gates user-authored sends against the daily limit.
type QuotaEnforcer interface {
	CanSend() (bool, error)
	RecordSend() error
}

// MessageLifecycle is the slice of the message service the send
// orchestration depends on.
type MessageLifecycle interface {
	Create(conversationID string, sender models.Sender, content string) (*models.Message, error)
	ListByConversation(conversationID string) ([]models.Message, error)
}

// MessageReader provides ordered message access for exporters.
type MessageReader interface {
	ListByConversation(conversationID string) ([]models.Message, error)
}

// TranscriptSource is the slice of the conversation directory the
// exporters depend on.
type TranscriptSource interface {
	Get(id string) (*models.Conversation, error)
	ExportText(id string) (string, error)
}
