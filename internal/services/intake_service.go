package services

import (
	"context"
	"fmt"

	"github.com/vrisetechno/vrise-api/internal/models"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
	"github.com/vrisetechno/vrise-api/pkg/logger"
	"github.com/vrisetechno/vrise-api/pkg/metrics"
	"github.com/vrisetechno/vrise-api/pkg/storage"
	"github.com/vrisetechno/vrise-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultResumeFilename = "resume"

// InvalidSubmissionMessage is returned when the store rejects field values
const InvalidSubmissionMessage = "Submission contains invalid values."

// IntakeService runs validate, persist, notify, respond for every form
type IntakeService struct {
	store    SubmissionStore
	notifier Notifier
	archiver ResumeArchiver
}

// NewIntakeService creates the intake workflow. archiver is optional.
func NewIntakeService(store SubmissionStore, notifier Notifier, archiver ResumeArchiver) *IntakeService {
	return &IntakeService{
		store:    store,
		notifier: notifier,
		archiver: archiver,
	}
}

// Submit stores a submission and acknowledges it by email. Only validation and
// persistence failures are returned; notification problems surface as
// EmailSent=false.
func (s *IntakeService) Submit(ctx context.Context, sub *models.Submission) (*models.SubmissionResult, error) {
	schema, ok := SchemaFor(sub.Kind)
	if !ok {
		return nil, apperrors.InvalidInputError("kind", fmt.Sprintf("unknown submission kind %q", sub.Kind))
	}
	kind := string(sub.Kind)

	ctx, span := tracing.StartSpan(ctx, "intake.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("submission.kind", kind))

	fields := schema.Normalize(sub.Fields)
	if err := schema.Validate(fields); err != nil {
		metrics.Submissions.WithLabelValues(kind, "invalid").Inc()
		logger.Warn("Submission failed validation",
			zap.String("kind", kind),
			zap.Error(err))
		return nil, err
	}

	normalized := &models.Submission{
		Kind:   sub.Kind,
		Fields: fields,
		Resume: sub.Resume,
	}
	record, err := s.store.Create(ctx, normalized)
	if err != nil {
		span.RecordError(err)
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			metrics.Submissions.WithLabelValues(kind, "invalid").Inc()
			logger.Warn("Submission rejected by store",
				zap.String("kind", kind),
				zap.Error(err))
			return nil, apperrors.WithPublicMessage(err, InvalidSubmissionMessage)
		}

		if !apperrors.Is(err, apperrors.ErrPersistence) {
			err = apperrors.PersistenceError("create "+kind, err)
		}
		metrics.Submissions.WithLabelValues(kind, "persist_failed").Inc()
		logger.LogError(err, "Failed to persist submission", zap.String("kind", kind))
		return nil, apperrors.WithPublicMessage(err, schema.FailureMessage)
	}

	span.SetAttributes(attribute.String("submission.id", record.ID))

	var attachments []models.Attachment
	if record.Resume != nil {
		attachment := resumeAttachment(record.Resume)
		attachments = append(attachments, attachment)
		s.archiveResume(ctx, record, attachment)
	}

	emailSent := false
	html, err := schema.RenderSummary(fields)
	if err != nil {
		logger.Error("Failed to render acknowledgement email",
			zap.String("kind", kind),
			zap.String("id", record.ID),
			zap.Error(err))
	} else {
		emailSent = s.notifier.Notify(ctx, &models.Notification{
			To:          normalized.Email(),
			Subject:     schema.Subject(fields),
			HTML:        html,
			Attachments: attachments,
		})
	}

	metrics.Submissions.WithLabelValues(kind, "success").Inc()
	logger.Info("Submission stored",
		zap.String("kind", kind),
		zap.String("id", record.ID),
		zap.Bool("email_sent", emailSent))

	return &models.SubmissionResult{
		ID:        record.ID,
		EmailSent: emailSent,
		Message:   schema.SuccessMessage,
	}, nil
}

func resumeAttachment(resume *models.Resume) models.Attachment {
	filename := resume.Filename
	if filename == "" {
		filename = defaultResumeFilename
	}
	return models.Attachment{
		Filename:    filename,
		ContentType: resume.MimeType,
		Data:        resume.Data,
	}
}

// archiveResume is best-effort: the record is already durable
func (s *IntakeService) archiveResume(ctx context.Context, record *models.Record, attachment models.Attachment) {
	if s.archiver == nil || len(attachment.Data) == 0 {
		return
	}

	key := storage.ObjectKey("resumes", string(record.Kind), record.ID, attachment.Filename)
	location, err := s.archiver.UploadObject(ctx, key, attachment.ContentType, attachment.Data)
	if err != nil {
		metrics.ResumeArchives.WithLabelValues("error").Inc()
		logger.Warn("Failed to archive resume",
			zap.String("id", record.ID),
			zap.String("key", key),
			zap.Error(err))
		return
	}

	metrics.ResumeArchives.WithLabelValues("success").Inc()
	logger.Debug("Resume archived",
		zap.String("id", record.ID),
		zap.String("location", location))
}
