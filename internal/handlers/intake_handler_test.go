package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vrisetechno/vrise-api/config"
	"github.com/vrisetechno/vrise-api/internal/middleware"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/internal/services"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
)

type MockIntakeService struct {
	mock.Mock
}

func (m *MockIntakeService) Submit(ctx context.Context, sub *models.Submission) (*models.SubmissionResult, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmissionResult), args.Error(1)
}

// countingStore stands in for Postgres in end-to-end handler tests
type countingStore struct {
	writes []*models.Submission
}

func (s *countingStore) Create(_ context.Context, sub *models.Submission) (*models.Record, error) {
	s.writes = append(s.writes, sub)
	return &models.Record{
		ID:        "rec-" + strings.Repeat("x", len(s.writes)),
		Kind:      sub.Kind,
		Fields:    sub.Fields,
		Resume:    sub.Resume,
		CreatedAt: time.Now(),
	}, nil
}

func newIntakeRouter(service services.IntakeServiceInterface, maxBody int64) *gin.Engine {
	handler := NewIntakeHandler(service)
	router := gin.New()
	router.Use(middleware.BodySizeLimitMiddleware(maxBody))
	router.POST("/api/internships/applications", handler.SubmitInternshipApplication)
	router.POST("/api/mock-interviews", handler.SubmitInterviewBooking)
	router.POST("/api/feedback", handler.SubmitFeedback)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

const ashaJSON = `{"name":"Asha","email":"asha@x.com","mobile":"9876543210","domain":"Full Stack Development","college":"ABC College","year":"2nd Year","reason":"Learn to build apps"}`

func TestIntakeHandler_Success(t *testing.T) {
	service := new(MockIntakeService)
	service.On("Submit", mock.Anything, mock.MatchedBy(func(sub *models.Submission) bool {
		return sub.Kind == models.KindInternshipApplication && sub.Fields["domain"] == "Full Stack Development"
	})).Return(&models.SubmissionResult{
		ID:        "V1StGXR8_Z5jdHi6B-myT",
		EmailSent: true,
		Message:   "Application stored successfully.",
	}, nil).Once()

	w := postJSON(newIntakeRouter(service, 1<<20), "/api/internships/applications", ashaJSON)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Application stored successfully.",
		"data": {"id": "V1StGXR8_Z5jdHi6B-myT", "emailSent": true}
	}`, w.Body.String())
	service.AssertExpectations(t)
}

func TestIntakeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "validation",
			err:         apperrors.WithPublicMessage(apperrors.InvalidInputError("email", "failed validation"), "All fields are required: missing email."),
			wantCode:    http.StatusBadRequest,
			wantMessage: "All fields are required: missing email.",
		},
		{
			name:        "persistence",
			err:         apperrors.WithPublicMessage(apperrors.PersistenceError("insert", errors.New("pool closed")), "Failed to save feedback."),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Failed to save feedback.",
		},
		{
			name:        "unexpected",
			err:         errors.New("pq: relation does not exist"),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockIntakeService)
			service.On("Submit", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			w := postJSON(newIntakeRouter(service, 1<<20), "/api/feedback",
				`{"name":"Meera","email":"meera@example.com","feedbackType":"Suggestion","rating":"5","message":"Great"}`)

			assert.Equal(t, tt.wantCode, w.Code)
			var envelope models.Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantMessage, envelope.Message)
			assert.Nil(t, envelope.Data)
		})
	}
}

func TestIntakeHandler_MalformedJSON(t *testing.T) {
	service := new(MockIntakeService)
	router := newIntakeRouter(service, 1<<20)

	for _, body := range []string{`{"name":`, `not json`, `{"rating": 5}`} {
		w := postJSON(router, "/api/feedback", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"success":false,"message":"Invalid JSON payload."}`, w.Body.String())
	}
	service.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestIntakeHandler_PayloadTooLarge(t *testing.T) {
	service := new(MockIntakeService)
	router := newIntakeRouter(service, 64)

	w := postJSON(router, "/api/internships/applications", ashaJSON)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Request body is too large."}`, w.Body.String())
	service.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestIntakeHandler_InvalidResume(t *testing.T) {
	service := new(MockIntakeService)
	router := newIntakeRouter(service, 1<<20)

	w := postJSON(router, "/api/mock-interviews",
		`{"name":"Ravi","email":"ravi@example.com","mobile":"9123456780","stack":"MERN","experience":"Fresher",
		  "resume":{"filename":"cv.pdf","mimetype":"application/pdf","size":3,"content":"%%%not-base64"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Resume content must be base64 encoded."}`, w.Body.String())
	service.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestIntakeHandler_EndToEnd(t *testing.T) {
	store := &countingStore{}
	notifier := services.NewNotificationService(config.EmailConfig{Enabled: false}, nil)
	router := newIntakeRouter(services.NewIntakeService(store, notifier, nil), 15<<20)

	t.Run("blank field is rejected without a write", func(t *testing.T) {
		w := postJSON(router, "/api/mock-interviews",
			`{"name":"Ravi","email":"ravi@example.com","mobile":"  ","stack":"MERN","experience":"Fresher"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"All fields are required: missing mobile."}`, w.Body.String())
		assert.Empty(t, store.writes)
	})

	t.Run("valid booking with resume is stored", func(t *testing.T) {
		w := postJSON(router, "/api/mock-interviews",
			`{"name":"Ravi","email":"ravi@example.com","mobile":"9123456780","stack":"MERN","experience":"Fresher",
			  "resume":{"filename":"cv.pdf","mimetype":"application/pdf","size":1,"content":"JVBERi0xLjc="}}`)

		require.Equal(t, http.StatusOK, w.Code)
		var envelope struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Data    struct {
				ID        string `json:"id"`
				EmailSent bool   `json:"emailSent"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.Equal(t, "Mock interview stored successfully.", envelope.Message)
		assert.NotEmpty(t, envelope.Data.ID)
		assert.False(t, envelope.Data.EmailSent)

		require.Len(t, store.writes, 1)
		require.NotNil(t, store.writes[0].Resume)
		assert.Equal(t, []byte("%PDF-1.7"), store.writes[0].Resume.Data)
	})
}
