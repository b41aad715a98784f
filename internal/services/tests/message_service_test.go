package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "ai_chat_go_backend/internal/errors"
	"ai_chat_go_backend/internal/models"
	"ai_chat_go_backend/internal/services"
	"ai_chat_go_backend/internal/store"
)

type fixture struct {
	store         *store.MemoryStore
	responder     *MockResponder
	conversations *services.ConversationService
	messages      *services.MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	rsp := new(MockResponder)
	return &fixture{
		store:         st,
		responder:     rsp,
		conversations: services.NewConversationService(st),
		messages:      services.NewMessageService(st, rsp),
	}
}

func TestCreateAppendsInOrder(t *testing.T) {
	f := newFixture(t)
	conv, err := f.conversations.Create("Test")
	require.NoError(t, err)

	first, err := f.messages.Create(conv.ID, models.SenderUser, "one")
	require.NoError(t, err)
	second, err := f.messages.Create(conv.ID, models.SenderAssistant, "two")
	require.NoError(t, err)
	third, err := f.messages.Create(conv.ID, models.SenderUser, "three")
	require.NoError(t, err)

	got, err := f.conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, got.MessageIDs)
	assert.False(t, got.UpdatedAt.Before(third.Timestamp))

	listed, err := f.messages.ListByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "one", listed[0].Content)
	assert.Equal(t, "two", listed[1].Content)
	assert.Equal(t, "three", listed[2].Content)
}

func TestCreateUnknownConversation(t *testing.T) {
	f := newFixture(t)
	_, err := f.messages.Create("missing", models.SenderUser, "hi")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateDerivesTitleFromFirstUserMessage(t *testing.T) {
	f := newFixture(t)
	conv, err := f.conversations.Create("")
	require.NoError(t, err)

	_, err = f.messages.Create(conv.ID, models.SenderUser, "Can you help me plan a trip?")
	require.NoError(t, err)

	got, err := f.conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Can you help me plan a trip?", got.Title)

	// A later message must not overwrite the derived title.
	_, err = f.messages.Create(conv.ID, models.SenderUser, "Something else entirely")
	require.NoError(t, err)
	got, err = f.conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Can you help me plan a trip?", got.Title)
}

func TestDeleteKeepsRemainingOrder(t *testing.T) {
	f := newFixture(t)
	conv, err := f.conversations.Create("Test")
	require.NoError(t, err)

	first, _ := f.messages.Create(conv.ID, models.SenderUser, "one")
	second, _ := f.messages.Create(conv.ID, models.SenderAssistant, "two")
	third, _ := f.messages.Create(conv.ID, models.SenderUser, "three")

	require.NoError(t, f.messages.Delete(second.ID))

	got, err := f.conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, third.ID}, got.MessageIDs)

	// The record is purged, not soft-deleted.
	_, err = f.store.GetMessage(second.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteMissingMessage(t *testing.T) {
	f := newFixture(t)
	err := f.messages.Delete("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRateAssistantMessage(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	f.messages.Create(conv.ID, models.SenderUser, "hi")
	reply, _ := f.messages.Create(conv.ID, models.SenderAssistant, "hello")

	require.NoError(t, f.messages.Rate(reply.ID, models.RatingUp))
	got, err := f.messages.Get(reply.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingUp, got.Rating)

	require.NoError(t, f.messages.Rate(reply.ID, models.RatingNone))
	got, _ = f.messages.Get(reply.ID)
	assert.Equal(t, models.RatingNone, got.Rating)
}

func TestRateUserMessageRejected(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	msg, _ := f.messages.Create(conv.ID, models.SenderUser, "hi")

	err := f.messages.Rate(msg.ID, models.RatingUp)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	got, _ := f.messages.Get(msg.ID)
	assert.Equal(t, models.RatingNone, got.Rating)
}

func TestRateInvalidValueRejected(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	f.messages.Create(conv.ID, models.SenderUser, "hi")
	reply, _ := f.messages.Create(conv.ID, models.SenderAssistant, "hello")

	err := f.messages.Rate(reply.ID, models.Rating("sideways"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)
}

func TestRegenerateReplacesReply(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	userMsg, _ := f.messages.Create(conv.ID, models.SenderUser, "hi")
	reply, _ := f.messages.Create(conv.ID, models.SenderAssistant, "hello")

	f.responder.On("Generate", mock.Anything, mock.Anything, "hi").
		Run(func(args mock.Arguments) {
			history := args.Get(1).([]models.Message)
			assert.Empty(t, history)
		}).
		Return("hey", nil).Once()

	fresh, err := f.messages.Regenerate(context.Background(), reply.ID)
	require.NoError(t, err)
	assert.Equal(t, "hey", fresh.Content)
	assert.Equal(t, models.SenderAssistant, fresh.Sender)

	listed, err := f.messages.ListByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, userMsg.ID, listed[0].ID)
	assert.Equal(t, "hi", listed[0].Content)
	assert.Equal(t, "hey", listed[1].Content)

	_, err = f.store.GetMessage(reply.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	f.responder.AssertExpectations(t)
}

func TestRegenerateUserMessageRejected(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	msg, _ := f.messages.Create(conv.ID, models.SenderUser, "hi")

	_, err := f.messages.Regenerate(context.Background(), msg.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	got, err := f.conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{msg.ID}, got.MessageIDs)
}

func TestRegenerateWithoutPrecedingUserMessage(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	reply, _ := f.messages.Create(conv.ID, models.SenderAssistant, "unprompted")

	_, err := f.messages.Regenerate(context.Background(), reply.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperation)

	// The store is untouched.
	got, err := f.conversations.Get(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{reply.ID}, got.MessageIDs)
	_, err = f.store.GetMessage(reply.ID)
	assert.NoError(t, err)
	f.responder.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegenerateGenerationFailure(t *testing.T) {
	f := newFixture(t)
	conv, _ := f.conversations.Create("Test")
	userMsg, _ := f.messages.Create(conv.ID, models.SenderUser, "hi")
	reply, _ := f.messages.Create(conv.ID, models.SenderAssistant, "hello")

	f.responder.On("Generate", mock.Anything, mock.Anything, "hi").
		Return("", apperrors.GenerationFailedf(assert.AnError)).Once()

	_, err := f.messages.Regenerate(context.Background(), reply.ID)
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailed)

	// The old reply is gone and not restored; the user message survives
	// and no dangling id remains.
	listed, listErr := f.messages.ListByConversation(conv.ID)
	require.NoError(t, listErr)
	require.Len(t, listed, 1)
	assert.Equal(t, userMsg.ID, listed[0].ID)

	got, getErr := f.conversations.Get(conv.ID)
	require.NoError(t, getErr)
	assert.Equal(t, []string{userMsg.ID}, got.MessageIDs)
}
