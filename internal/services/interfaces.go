package services

import (
	"context"

	"github.com/vrisetechno/vrise-api/internal/models"
)

// SubmissionStore durably appends submissions
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) (*models.Record, error)
}

// Notifier delivers acknowledgement emails. It never fails the caller;
// the return value only reports whether every delivery went out.
type Notifier interface {
	Notify(ctx context.Context, notification *models.Notification) bool
}

// ResumeArchiver copies uploaded resumes to object storage
type ResumeArchiver interface {
	UploadObject(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// IntakeServiceInterface defines the intake workflow shared by every form
type IntakeServiceInterface interface {
	Submit(ctx context.Context, sub *models.Submission) (*models.SubmissionResult, error)
}

// Ensure services implement their interfaces
var _ IntakeServiceInterface = (*IntakeService)(nil)
var _ Notifier = (*NotificationService)(nil)
