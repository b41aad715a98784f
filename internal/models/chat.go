package models

import (
	"time"
)

// Sender identifies the author of a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Rating is the user's feedback on an assistant message.
type Rating string

const (
	RatingNone Rating = "none"
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// ValidRating reports whether r is one of the three accepted values.
func ValidRating(r Rating) bool {
	return r == RatingNone || r == RatingUp || r == RatingDown
}

// Conversation is a titled, ordered collection of messages. MessageIDs is
// insertion-ordered and is the single source of truth for display order;
// every id in it refers to a live Message owned by this conversation.
type Conversation struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IsPinned   bool
	MessageIDs []string
}

// Message is one turn in a conversation. Content and Timestamp are
// immutable after creation; only Rating may change in place.
type Message struct {
	ID             string
	ConversationID string
	Sender         Sender
	Content        string
	Rating         Rating
	Timestamp      time.Time
}
