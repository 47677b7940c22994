package repository

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/vrisetechno/vrise-api/internal/database/postgres"
	"github.com/vrisetechno/vrise-api/internal/models"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
	"github.com/vrisetechno/vrise-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// MaxLongTextLength caps free-text answers (reason, message)
const MaxLongTextLength = 1000

// SubmissionWriter appends rows to a submission table
type SubmissionWriter interface {
	InsertSubmission(ctx context.Context, table string, values map[string]any) (*postgres.InsertedRow, error)
}

// submissionTable maps a kind onto its table. columns is keyed by form field name.
type submissionTable struct {
	name       string
	columns    map[string]string
	maxLengths map[string]int
}

var submissionTables = map[models.Kind]submissionTable{
	models.KindInternshipApplication: {
		name: "internship_applications",
		columns: map[string]string{
			"name":    "name",
			"email":   "email",
			"mobile":  "mobile",
			"domain":  "domain",
			"college": "college",
			"year":    "year",
			"reason":  "reason",
		},
		maxLengths: map[string]int{"reason": MaxLongTextLength},
	},
	models.KindInterviewBooking: {
		name: "interview_bookings",
		columns: map[string]string{
			"name":       "name",
			"email":      "email",
			"mobile":     "mobile",
			"stack":      "stack",
			"experience": "experience",
		},
	},
	models.KindFeedback: {
		name: "feedback_entries",
		columns: map[string]string{
			"name":         "name",
			"email":        "email",
			"feedbackType": "feedback_type",
			"rating":       "rating",
			"message":      "message",
		},
		maxLengths: map[string]int{"message": MaxLongTextLength},
	},
}

// SubmissionRepository is the append-only record store for all form submissions
type SubmissionRepository struct {
	db SubmissionWriter
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db SubmissionWriter) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create durably stores a submission and returns the record with its assigned
// identity and creation time. Length ceilings are enforced here regardless of
// upstream validation.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) (*models.Record, error) {
	table, ok := submissionTables[sub.Kind]
	if !ok {
		return nil, apperrors.InvalidInputError("kind", fmt.Sprintf("unknown submission kind %q", sub.Kind))
	}

	for field, limit := range table.maxLengths {
		if utf8.RuneCountInString(sub.Fields[field]) > limit {
			return nil, apperrors.InvalidInputError(field, fmt.Sprintf("must not exceed %d characters", limit))
		}
	}

	ctx, span := tracing.StartSpan(ctx, "repository.CreateSubmission")
	defer span.End()
	span.SetAttributes(attribute.String("submission.kind", string(sub.Kind)))

	values := make(map[string]any, len(table.columns)+4)
	fields := make(map[string]string, len(table.columns))
	for field, column := range table.columns {
		values[column] = sub.Fields[field]
		fields[field] = sub.Fields[field]
	}

	var resume *models.Resume
	if sub.Resume != nil {
		if sub.Kind != models.KindInterviewBooking {
			return nil, apperrors.InvalidInputError("resume", "only interview bookings accept a resume")
		}
		values["resume_filename"] = sub.Resume.Filename
		values["resume_mimetype"] = sub.Resume.MimeType
		values["resume_size"] = sub.Resume.Size
		values["resume_data"] = sub.Resume.Data
		copied := *sub.Resume
		resume = &copied
	}

	row, err := r.db.InsertSubmission(ctx, table.name, values)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("submission.id", row.ID))

	return &models.Record{
		ID:        row.ID,
		Kind:      sub.Kind,
		Fields:    fields,
		Resume:    resume,
		CreatedAt: row.CreatedAt,
	}, nil
}
