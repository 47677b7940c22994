package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/internal/services"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
)

// InvalidResumeMessage is returned when resume content is not base64
const InvalidResumeMessage = "Resume content must be base64 encoded."

// IntakeHandler exposes the lead-capture forms
type IntakeHandler struct {
	service services.IntakeServiceInterface
}

func NewIntakeHandler(service services.IntakeServiceInterface) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// SubmitInternshipApplication handles POST /api/internships/applications
func (h *IntakeHandler) SubmitInternshipApplication(c *gin.Context) {
	var req models.InternshipApplicationRequest
	if !bindJSON(c, &req) {
		return
	}
	h.submit(c, req.ToSubmission())
}

// SubmitInterviewBooking handles POST /api/mock-interviews
func (h *IntakeHandler) SubmitInterviewBooking(c *gin.Context) {
	var req models.InterviewBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := req.ToSubmission()
	if err != nil {
		respondError(c, http.StatusBadRequest, InvalidResumeMessage, err)
		return
	}
	h.submit(c, sub)
}

// SubmitFeedback handles POST /api/feedback
func (h *IntakeHandler) SubmitFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	h.submit(c, req.ToSubmission())
}

func (h *IntakeHandler) submit(c *gin.Context, sub *models.Submission) {
	result, err := h.service.Submit(c.Request.Context(), sub)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		respondError(c, status, apperrors.PublicMessage(err, InternalServerErrorMessage), err)
		return
	}

	respondSuccess(c, result.Message, result)
}

// bindJSON decodes the body and writes the error envelope itself on failure
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(c, http.StatusRequestEntityTooLarge, PayloadTooLargeMessage, err)
		return false
	}

	respondError(c, http.StatusBadRequest, InvalidJSONMessage, err)
	return false
}
