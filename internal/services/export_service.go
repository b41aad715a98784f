package services

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"ai_chat_go_backend/internal/models"
)

// ExportService renders conversation transcripts for download. Every
// format derives from the same message order the directory exposes.
type ExportService struct {
	conversations TranscriptSource
	messages      MessageReader
}

func NewExportService(conversations TranscriptSource, messages MessageReader) *ExportService {
	return &ExportService{conversations: conversations, messages: messages}
}

// WriteText writes the title followed by the stable plain-text
// transcript.
func (s *ExportService) WriteText(w io.Writer, conversationID string) error {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return err
	}
	text, err := s.conversations.ExportText(conversationID)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n\n%s", conv.Title, text); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// WriteMarkdown writes the transcript with a title heading and bold
// sender labels.
func (s *ExportService) WriteMarkdown(w io.Writer, conversationID string) error {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return err
	}
	messages, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", conv.Title)
	for _, msg := range messages {
		label := "User"
		if msg.Sender == models.SenderAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&sb, "**%s** (%s):\n\n%s\n\n", label, msg.Timestamp.Format(exportTimeFormat), msg.Content)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// WritePDF renders the transcript as a PDF document.
func (s *ExportService) WritePDF(w io.Writer, conversationID string) error {
	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return err
	}
	messages, err := s.messages.ListByConversation(conversationID)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, conv.Title, "", "L", false)
	pdf.Ln(4)
	for _, msg := range messages {
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%s (%s)", msg.Sender, msg.Timestamp.Format(exportTimeFormat)), "", "L", false)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 6, msg.Content, "", "L", false)
		pdf.Ln(3)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFileName derives a download file name from a conversation title.
func ExportFileName(title, ext string) string {
	name := unsafeFileChars.ReplaceAllString(strings.ToLower(title), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "conversation"
	}
	return name + "." + ext
}
