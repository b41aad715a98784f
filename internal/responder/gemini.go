package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
)

// Gemini generates replies through the Google Generative AI API.
type Gemini struct {
	model *genai.GenerativeModel
}

func NewGemini(client *genai.Client, modelName string) *Gemini {
	return &Gemini{model: client.GenerativeModel(modelName)}
}

// Generate replays the prior turns as chat history and sends the latest
// user content. An API failure or an empty model response surfaces as
// ErrGenerationFailed, never as silent empty content.
func (g *Gemini) Generate(ctx context.Context, history []models.Message, latest string) (string, error) {
	chat := g.model.StartChat()
	for _, msg := range history {
		role := "user"
		if msg.Sender == models.SenderAssistant {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	resp, err := chat.SendMessage(ctx, genai.Text(latest))
	if err != nil {
		return "", apperrors.GenerationFailedf(err)
	}
	text := extractText(resp)
	if text == "" {
		return "", apperrors.GenerationFailedf(fmt.Errorf("model returned no text"))
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
