package responder

import (
	"context"
	"fmt"
	"strings"

	"ai_chat_go_backend/internal/models"
)

// Rules is the built-in keyword-matching responder. It stands in for a
// real inference backend and never fails.
type Rules struct{}

func NewRules() *Rules {
	return &Rules{}
}

func (r *Rules) Generate(_ context.Context, _ []models.Message, latest string) (string, error) {
	lower := strings.ToLower(latest)

	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! I'm your AI assistant. How can I help you today?", nil
	case strings.Contains(lower, "blog") || strings.Contains(lower, "write"):
		return "I'd be happy to help you with writing! Could you tell me more about the topic, your target audience and the desired length? That will help me draft something that fits.", nil
	case strings.Contains(lower, "code") || strings.Contains(lower, "programming"):
		return "I can definitely help with coding! Which language are you working with, and what would you like to accomplish? Feel free to share your code if you'd like a review.", nil
	case strings.Contains(lower, "thank"):
		return "You're welcome! Feel free to ask if you need anything else.", nil
	default:
		return fmt.Sprintf("I understand you're asking about %q. I can help with writing, coding questions, brainstorming and more. Tell me a bit more about what you need.", latest), nil
	}
}
