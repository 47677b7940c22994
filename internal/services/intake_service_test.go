package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/internal/services"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
)

// recordingStore assigns fresh ids and remembers every write
type recordingStore struct {
	mu      sync.Mutex
	records []*models.Record
	err     error
}

func (s *recordingStore) Create(_ context.Context, sub *models.Submission) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	record := &models.Record{ID: id, Kind: sub.Kind, Fields: sub.Fields, Resume: sub.Resume, CreatedAt: time.Now()}
	s.records = append(s.records, record)
	return record, nil
}

func (s *recordingStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestIntakeService_Submit_AshaScenario(t *testing.T) {
	for _, reachable := range []bool{true, false} {
		store := &recordingStore{}
		notifier := new(MockNotifier)
		notifier.On("Notify", mock.Anything, mock.AnythingOfType("*models.Notification")).Return(reachable).Once()

		service := services.NewIntakeService(store, notifier, nil)
		result, err := service.Submit(context.Background(), ashaApplication())

		require.NoError(t, err)
		assert.NotEmpty(t, result.ID)
		assert.Equal(t, reachable, result.EmailSent)
		assert.Equal(t, "Application stored successfully.", result.Message)
		assert.Equal(t, 1, store.writes())
		notifier.AssertExpectations(t)
	}
}

func TestIntakeService_Submit_BuildsNotification(t *testing.T) {
	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.To == "asha@x.com" &&
			n.Subject == "Thanks for applying for the Full Stack Development internship" &&
			strings.Contains(n.HTML, "<strong>College:</strong> ABC College") &&
			len(n.Attachments) == 0
	})).Return(true).Once()

	service := services.NewIntakeService(store, notifier, nil)
	_, err := service.Submit(context.Background(), ashaApplication())

	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestIntakeService_Submit_TrimsFields(t *testing.T) {
	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(true)

	service := services.NewIntakeService(store, notifier, nil)
	_, err := service.Submit(context.Background(), withField(ashaApplication(), "name", "  Asha  "))

	require.NoError(t, err)
	require.Equal(t, 1, store.writes())
	assert.Equal(t, "Asha", store.records[0].Fields["name"])
}

func TestIntakeService_Submit_NotifiesTrimmedAddress(t *testing.T) {
	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.To == "asha@x.com"
	})).Return(true).Once()

	service := services.NewIntakeService(store, notifier, nil)
	_, err := service.Submit(context.Background(), withField(ashaApplication(), "email", "  asha@x.com\t"))

	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestIntakeService_Submit_NULByteNeverWrites(t *testing.T) {
	store := new(MockSubmissionStore)
	notifier := new(MockNotifier)
	service := services.NewIntakeService(store, notifier, nil)

	_, err := service.Submit(context.Background(), withField(feedbackEntry(), "message", "hi\x00there"))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_MissingFieldNeverWrites(t *testing.T) {
	for _, valid := range validSubmissions() {
		schema, ok := services.SchemaFor(valid.Kind)
		require.True(t, ok)

		for _, field := range schema.Fields {
			cases := map[string]*models.Submission{
				"blank":  withField(valid, field.Name, "   "),
				"empty":  withField(valid, field.Name, ""),
				"absent": withoutField(valid, field.Name),
			}
			for name, sub := range cases {
				t.Run(string(valid.Kind)+"/"+field.Name+"/"+name, func(t *testing.T) {
					store := new(MockSubmissionStore)
					notifier := new(MockNotifier)
					service := services.NewIntakeService(store, notifier, nil)

					result, err := service.Submit(context.Background(), sub)

					require.Error(t, err)
					assert.Nil(t, result)
					assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
					assert.Contains(t, apperrors.PublicMessage(err, ""), "All fields are required")
					assert.Contains(t, apperrors.PublicMessage(err, ""), field.Name)
					store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
					notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
				})
			}
		}
	}
}

func TestIntakeService_Submit_FeedbackMessageTooLong(t *testing.T) {
	store := new(MockSubmissionStore)
	notifier := new(MockNotifier)
	service := services.NewIntakeService(store, notifier, nil)

	_, err := service.Submit(context.Background(), withField(feedbackEntry(), "message", longText(1001)))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, "message must be at most 1000 characters.", apperrors.PublicMessage(err, ""))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_MessageAtCeilingAccepted(t *testing.T) {
	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(true)
	service := services.NewIntakeService(store, notifier, nil)

	_, err := service.Submit(context.Background(), withField(feedbackEntry(), "message", strings.Repeat("é", 1000)))

	require.NoError(t, err)
	assert.Equal(t, 1, store.writes())
}

func TestIntakeService_Submit_PersistFailureSkipsNotifier(t *testing.T) {
	tests := []struct {
		sub     *models.Submission
		message string
	}{
		{ashaApplication(), "Failed to save application."},
		{interviewBooking(), "Failed to save mock interview booking."},
		{feedbackEntry(), "Failed to save feedback."},
	}

	for _, tt := range tests {
		t.Run(string(tt.sub.Kind), func(t *testing.T) {
			store := new(MockSubmissionStore)
			store.On("Create", mock.Anything, mock.Anything).
				Return(nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")).Once()
			notifier := new(MockNotifier)
			service := services.NewIntakeService(store, notifier, nil)

			result, err := service.Submit(context.Background(), tt.sub)

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.Is(err, apperrors.ErrPersistence))
			assert.False(t, apperrors.Is(err, apperrors.ErrInvalidInput))
			assert.Equal(t, tt.message, apperrors.PublicMessage(err, ""))
			store.AssertExpectations(t)
			notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
		})
	}
}

func TestIntakeService_Submit_StoreRejectionIsClientError(t *testing.T) {
	store := new(MockSubmissionStore)
	store.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperrors.InvalidInputError("reason", "rejected by database constraint")).Once()
	notifier := new(MockNotifier)
	service := services.NewIntakeService(store, notifier, nil)

	_, err := service.Submit(context.Background(), ashaApplication())

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Equal(t, services.InvalidSubmissionMessage, apperrors.PublicMessage(err, ""))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestIntakeService_Submit_DuplicatesCreateDistinctRecords(t *testing.T) {
	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(false)
	service := services.NewIntakeService(store, notifier, nil)

	first, err := service.Submit(context.Background(), feedbackEntry())
	require.NoError(t, err)
	second, err := service.Submit(context.Background(), feedbackEntry())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, store.writes())
}

func TestIntakeService_Submit_DisabledNotifier(t *testing.T) {
	store := &recordingStore{}
	notifier := services.NewNotificationService(disabledEmail(), nil)
	service := services.NewIntakeService(store, notifier, nil)

	for _, sub := range validSubmissions() {
		result, err := service.Submit(context.Background(), sub)
		require.NoError(t, err)
		assert.False(t, result.EmailSent)
	}
	assert.Equal(t, 3, store.writes())
}

func TestIntakeService_Submit_ResumeRoundTrip(t *testing.T) {
	payload := []byte("%PDF-1.7\n\x00\x01\x02 binary resume body")
	upload := &models.InterviewBookingRequest{
		Name:       "Ravi",
		Email:      "ravi@example.com",
		Mobile:     "9123456780",
		Stack:      "MERN",
		Experience: "Fresher",
		Resume: &models.ResumeUpload{
			Filename: "ravi-cv.pdf",
			MimeType: "application/pdf",
			Size:     999,
			Content:  encodeBase64(payload),
		},
	}
	sub, err := upload.ToSubmission()
	require.NoError(t, err)

	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return len(n.Attachments) == 1 &&
			n.Attachments[0].Filename == "ravi-cv.pdf" &&
			n.Attachments[0].ContentType == "application/pdf" &&
			string(n.Attachments[0].Data) == string(payload)
	})).Return(true).Once()
	archiver := new(MockResumeArchiver)
	archiver.On("UploadObject", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "resumes/interview_booking/") && strings.HasSuffix(key, "/ravi-cv.pdf")
	}), "application/pdf", payload).Return("s3://vrise-resumes/key", nil).Once()

	service := services.NewIntakeService(store, notifier, archiver)
	result, err := service.Submit(context.Background(), sub)

	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	require.Equal(t, 1, store.writes())
	stored := store.records[0].Resume
	require.NotNil(t, stored)
	assert.Len(t, stored.Data, len(payload))
	assert.Equal(t, int64(len(payload)), stored.Size)
	notifier.AssertExpectations(t)
	archiver.AssertExpectations(t)
	require.Len(t, archiver.Calls, 1)
	assert.Equal(t, "resumes/interview_booking/"+store.records[0].ID+"/ravi-cv.pdf", archiver.Calls[0].Arguments.String(1))
}

func TestIntakeService_Submit_ArchiveFailureIsIgnored(t *testing.T) {
	sub := withField(interviewBooking(), "name", "Ravi")
	sub.Resume = &models.Resume{MimeType: "application/pdf", Size: 4, Data: []byte("%PDF")}

	store := &recordingStore{}
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return len(n.Attachments) == 1 && n.Attachments[0].Filename == "resume"
	})).Return(true).Once()
	archiver := new(MockResumeArchiver)
	archiver.On("UploadObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket unavailable")).Once()

	service := services.NewIntakeService(store, notifier, archiver)
	result, err := service.Submit(context.Background(), sub)

	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	archiver.AssertExpectations(t)
}

func TestIntakeService_Submit_UnknownKind(t *testing.T) {
	store := new(MockSubmissionStore)
	service := services.NewIntakeService(store, new(MockNotifier), nil)

	_, err := service.Submit(context.Background(), &models.Submission{Kind: "newsletter"})

	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
