package models

// Envelope is the uniform response shape returned by every endpoint
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// SubmissionResult is the data payload of a successful intake
type SubmissionResult struct {
	ID        string `json:"id"`
	EmailSent bool   `json:"emailSent"`
	Message   string `json:"-"`
}
