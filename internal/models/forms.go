package models

import (
	"encoding/base64"
	"strings"

	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
)

// InternshipApplicationRequest is the body of POST /api/internships/applications
type InternshipApplicationRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Mobile  string `json:"mobile"`
	Domain  string `json:"domain"`
	College string `json:"college"`
	Year    string `json:"year"`
	Reason  string `json:"reason"`
}

// ToSubmission converts the request into a kind-neutral submission
func (r *InternshipApplicationRequest) ToSubmission() *Submission {
	return &Submission{
		Kind: KindInternshipApplication,
		Fields: map[string]string{
			"name":    r.Name,
			"email":   r.Email,
			"mobile":  r.Mobile,
			"domain":  r.Domain,
			"college": r.College,
			"year":    r.Year,
			"reason":  r.Reason,
		},
	}
}

// InterviewBookingRequest is the body of POST /api/mock-interviews
type InterviewBookingRequest struct {
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Mobile     string        `json:"mobile"`
	Stack      string        `json:"stack"`
	Experience string        `json:"experience"`
	Resume     *ResumeUpload `json:"resume,omitempty"`
}

// ResumeUpload carries a file as base64 inside the JSON body
type ResumeUpload struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	Content  string `json:"content"` // base64, raw or data URI
}

// ToSubmission converts the request into a kind-neutral submission.
// A resume without content is treated as absent.
func (r *InterviewBookingRequest) ToSubmission() (*Submission, error) {
	sub := &Submission{
		Kind: KindInterviewBooking,
		Fields: map[string]string{
			"name":       r.Name,
			"email":      r.Email,
			"mobile":     r.Mobile,
			"stack":      r.Stack,
			"experience": r.Experience,
		},
	}

	if r.Resume == nil || strings.TrimSpace(r.Resume.Content) == "" {
		return sub, nil
	}

	data, err := DecodeBase64Content(r.Resume.Content)
	if err != nil {
		return nil, apperrors.InvalidInputError("resume", "content is not valid base64")
	}

	sub.Resume = &Resume{
		Filename: strings.TrimSpace(r.Resume.Filename),
		MimeType: strings.TrimSpace(r.Resume.MimeType),
		Size:     int64(len(data)),
		Data:     data,
	}
	return sub, nil
}

// FeedbackRequest is the body of POST /api/feedback
type FeedbackRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	FeedbackType string `json:"feedbackType"`
	Rating       string `json:"rating"`
	Message      string `json:"message"`
}

// ToSubmission converts the request into a kind-neutral submission
func (r *FeedbackRequest) ToSubmission() *Submission {
	return &Submission{
		Kind: KindFeedback,
		Fields: map[string]string{
			"name":         r.Name,
			"email":        r.Email,
			"feedbackType": r.FeedbackType,
			"rating":       r.Rating,
			"message":      r.Message,
		},
	}
}

// DecodeBase64Content decodes standard base64, accepting the data URI form
// (data:application/pdf;base64,...) that browsers produce.
func DecodeBase64Content(content string) ([]byte, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "data:") {
		if idx := strings.Index(content, ","); idx >= 0 {
			content = content[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(content)
}
