package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/pkg/mailer"
)

// MockSubmissionStore is a mock implementation of SubmissionStore
type MockSubmissionStore struct {
	mock.Mock
}

func (m *MockSubmissionStore) Create(ctx context.Context, sub *models.Submission) (*models.Record, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, notification *models.Notification) bool {
	args := m.Called(ctx, notification)
	return args.Bool(0)
}

// MockResumeArchiver is a mock implementation of ResumeArchiver
type MockResumeArchiver struct {
	mock.Mock
}

func (m *MockResumeArchiver) UploadObject(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
