package models

import "time"

// Kind identifies which lead-capture form a submission came from
type Kind string

const (
	KindInternshipApplication Kind = "internship_application"
	KindInterviewBooking      Kind = "interview_booking"
	KindFeedback              Kind = "feedback"
)

// Submission is a form submission in a kind-neutral shape.
// Field keys are the JSON field names the form posts.
type Submission struct {
	Kind   Kind
	Fields map[string]string
	Resume *Resume
}

// Email returns the submitter address
func (s *Submission) Email() string {
	return s.Fields["email"]
}

// Resume is an uploaded CV stored as an opaque blob
type Resume struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// Record is a persisted submission. ID and CreatedAt are assigned by the store
// exactly once; records are append-only.
type Record struct {
	ID        string
	Kind      Kind
	Fields    map[string]string
	Resume    *Resume
	CreatedAt time.Time
}

// Attachment is a binary part carried by an outbound email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Notification is one acknowledgement email addressed to the submitter
type Notification struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}
