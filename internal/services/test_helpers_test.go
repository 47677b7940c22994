package services_test

import (
	"strings"

	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func ashaApplication() *models.Submission {
	return &models.Submission{
		Kind: models.KindInternshipApplication,
		Fields: map[string]string{
			"name":    "Asha",
			"email":   "asha@x.com",
			"mobile":  "9876543210",
			"domain":  "Full Stack Development",
			"college": "ABC College",
			"year":    "2nd Year",
			"reason":  "Learn to build apps",
		},
	}
}

func interviewBooking() *models.Submission {
	return &models.Submission{
		Kind: models.KindInterviewBooking,
		Fields: map[string]string{
			"name":       "Ravi",
			"email":      "ravi@example.com",
			"mobile":     "9123456780",
			"stack":      "MERN",
			"experience": "Fresher",
		},
	}
}

func feedbackEntry() *models.Submission {
	return &models.Submission{
		Kind: models.KindFeedback,
		Fields: map[string]string{
			"name":         "Meera",
			"email":        "meera@example.com",
			"feedbackType": "Suggestion",
			"rating":       "5",
			"message":      "Loved the mentorship sessions",
		},
	}
}

func validSubmissions() []*models.Submission {
	return []*models.Submission{ashaApplication(), interviewBooking(), feedbackEntry()}
}

func withField(sub *models.Submission, field, value string) *models.Submission {
	fields := make(map[string]string, len(sub.Fields))
	for k, v := range sub.Fields {
		fields[k] = v
	}
	fields[field] = value
	return &models.Submission{Kind: sub.Kind, Fields: fields, Resume: sub.Resume}
}

func withoutField(sub *models.Submission, field string) *models.Submission {
	fields := make(map[string]string, len(sub.Fields))
	for k, v := range sub.Fields {
		if k != field {
			fields[k] = v
		}
	}
	return &models.Submission{Kind: sub.Kind, Fields: fields, Resume: sub.Resume}
}

func longText(n int) string {
	return strings.Repeat("a", n)
}
