package services_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/services"
	"ai_chat_go_backend/internal/store"
)

func putConversation(t *testing.T, st store.Store, title string, pinned bool, updatedAt time.Time) *models.Conversation {
	t.Helper()
	conv := &models.Conversation{
		ID:         title,
		Title:      title,
		CreatedAt:  updatedAt,
		UpdatedAt:  updatedAt,
		IsPinned:   pinned,
		MessageIDs: []string{},
	}
	require.NoError(t, st.PutConversation(conv))
	return conv
}

func titles(conversations []models.Conversation) []string {
	out := make([]string, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, conv.Title)
	}
	return out
}

func TestListPinnedFirstThenRecent(t *testing.T) {
	st := store.NewMemoryStore()
	svc := services.NewConversationService(st)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	putConversation(t, st, "oldest", false, base.Add(-72*time.Hour))
	putConversation(t, st, "pinned old", true, base.Add(-48*time.Hour))
	putConversation(t, st, "recent", false, base.Add(-1*time.Hour))
	putConversation(t, st, "pinned new", true, base)

	listed, err := svc.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"pinned new", "pinned old", "recent", "oldest"}, titles(listed))
}

func TestSearchMatchesTitleCaseInsensitive(t *testing.T) {
	st := store.NewMemoryStore()
	svc := services.NewConversationService(st)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	putConversation(t, st, "Writing a Blog Post", false, base)
	putConversation(t, st, "Recipe Suggestions", false, base.Add(time.Hour))
	putConversation(t, st, "Blogging for Beginners", true, base.Add(-time.Hour))

	matches, err := svc.Search("blog")
	require.NoError(t, err)
	assert.Equal(t, []string{"Blogging for Beginners", "Writing a Blog Post"}, titles(matches))

	matches, err = svc.Search("soufflé")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTogglePin(t *testing.T) {
	st := store.NewMemoryStore()
	svc := services.NewConversationService(st)
	conv, err := svc.Create("Test")
	require.NoError(t, err)

	require.NoError(t, svc.TogglePin(conv.ID))
	got, err := svc.Get(conv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPinned)

	require.NoError(t, svc.TogglePin(conv.ID))
	got, err = svc.Get(conv.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPinned)
}

func TestDeleteCascadesToMessages(t *testing.T) {
	f := newFixture(t)
	keep, _ := f.conversations.Create("keep")
	doomed, _ := f.conversations.Create("doomed")

	kept, _ := f.messages.Create(keep.ID, models.SenderUser, "staying")
	f.messages.Create(doomed.ID, models.SenderUser, "going")
	f.messages.Create(doomed.ID, models.SenderAssistant, "gone")

	require.NoError(t, f.conversations.Delete(doomed.ID))

	_, err := f.conversations.Get(doomed.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	remaining, err := f.store.ListMessages()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}

func TestDeleteMissingConversation(t *testing.T) {
	st := store.NewMemoryStore()
	svc := services.NewConversationService(st)
	assert.ErrorIs(t, svc.Delete("missing"), apperrors.ErrNotFound)
}

func TestPreviewUsesLatestMessage(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")

	preview, err := f.conversations.Preview(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "", preview)

	f.messages.Create(conv.ID, models.SenderUser, "first")
	f.messages.Create(conv.ID, models.SenderAssistant, "second")

	preview, err = f.conversations.Preview(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", preview)
}

func TestPreviewTruncatesLongContent(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	long := strings.Repeat("é", 100)
	f.messages.Create(conv.ID, models.SenderUser, long)

	preview, err := f.conversations.Preview(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 80)+"...", preview)
}

func TestExportTextFormat(t *testing.T) {
	st := store.NewMemoryStore()
	svc := services.NewConversationService(st)
	asked := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	conv := &models.Conversation{
		ID:         "conv",
		Title:      "Test",
		CreatedAt:  asked,
		UpdatedAt:  asked,
		MessageIDs: []string{"q", "a"},
	}
	require.NoError(t, st.PutConversation(conv))
	require.NoError(t, st.PutMessage(&models.Message{
		ID: "q", ConversationID: "conv", Sender: models.SenderUser,
		Content: "hello", Rating: models.RatingNone, Timestamp: asked,
	}))
	require.NoError(t, st.PutMessage(&models.Message{
		ID: "a", ConversationID: "conv", Sender: models.SenderAssistant,
		Content: "hi there", Rating: models.RatingNone, Timestamp: asked.Add(30 * time.Second),
	}))

	text, err := svc.ExportText("conv")
	require.NoError(t, err)
	want := fmt.Sprintf("user (%s): hello\nassistant (%s): hi there\n",
		"2024-03-01 09:30:00", "2024-03-01 09:30:30")
	assert.Equal(t, want, text)
}

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "New Chat", services.DeriveTitle("   "))
	assert.Equal(t, "Plan my week", services.DeriveTitle("  Plan my week  "))
	long := strings.Repeat("x", 60)
	assert.Equal(t, strings.Repeat("x", 40)+"...", services.DeriveTitle(long))
}

func TestMessageCount(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")

	count, err := f.conversations.MessageCount(conv.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	f.messages.Create(conv.ID, models.SenderUser, "one")
	f.messages.Create(conv.ID, models.SenderAssistant, "two")

	count, err = f.conversations.MessageCount(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
