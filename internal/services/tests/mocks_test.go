package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ai_chat_go_backend/internal/models"
)

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Generate(ctx context.Context, history []models.Message, latest string) (string, error) {
	args := m.Called(ctx, history, latest)
	return args.String(0), args.Error(1)
}

type MockQuotaEnforcer struct {
	mock.Mock
}

func (m *MockQuotaEnforcer) CanSend() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotaEnforcer) RecordSend() error {
	args := m.Called()
	return args.Error(0)
}

type MockMessageLifecycle struct {
	mock.Mock
}

func (m *MockMessageLifecycle) Create(conversationID string, sender models.Sender, content string) (*models.Message, error) {
	args := m.Called(conversationID, sender, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageLifecycle) ListByConversation(conversationID string) ([]models.Message, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}
