package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vrisetechno/vrise-api/internal/models"
	"github.com/vrisetechno/vrise-api/internal/repository"
	apperrors "github.com/vrisetechno/vrise-api/pkg/errors"
)

var validate = newValidator()

const requiredRule = "required,nonul"

var longTextRule = fmt.Sprintf("%s,max=%d", requiredRule, repository.MaxLongTextLength)

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("nonul", noNULByte); err != nil {
		panic(err)
	}
	return v
}

// noNULByte rejects values Postgres TEXT cannot store
func noNULByte(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

// FieldRule describes one form field
type FieldRule struct {
	Name  string // JSON field name
	Label string // label used in the email summary
	Rules string // validator tag
}

// FormSchema is everything that differs between the lead-capture forms
type FormSchema struct {
	Kind           models.Kind
	Fields         []FieldRule
	Title          string
	Subject        func(fields map[string]string) string
	Greeting       *template.Template
	SuccessMessage string
	FailureMessage string
}

type summaryRow struct {
	Label string
	Value string
}

var summaryTemplate = template.Must(template.New("summary").Parse(
	`<p>{{.Greeting}}</p>` +
		`<h2>{{.Title}}</h2>` +
		`<ul>{{range .Rows}}<li><strong>{{.Label}}:</strong> {{if .Value}}{{.Value}}{{else}}N/A{{end}}</li>{{end}}</ul>` +
		`<p>Team V Rise</p>`,
))

var formSchemas = map[models.Kind]*FormSchema{
	models.KindInternshipApplication: {
		Kind: models.KindInternshipApplication,
		Fields: []FieldRule{
			{Name: "name", Label: "Name", Rules: requiredRule},
			{Name: "email", Label: "Email", Rules: requiredRule},
			{Name: "mobile", Label: "Mobile", Rules: requiredRule},
			{Name: "domain", Label: "Domain", Rules: requiredRule},
			{Name: "college", Label: "College", Rules: requiredRule},
			{Name: "year", Label: "Year", Rules: requiredRule},
			{Name: "reason", Label: "Reason", Rules: longTextRule},
		},
		Title: "Internship Application Received",
		Subject: func(fields map[string]string) string {
			return fmt.Sprintf("Thanks for applying for the %s internship", fields["domain"])
		},
		Greeting: template.Must(template.New("internship_application").Parse(
			`Hi {{.name}}, thank you for applying for the {{.domain}} internship. ` +
				`Our team will review your application and get back to you soon.`)),
		SuccessMessage: "Application stored successfully.",
		FailureMessage: "Failed to save application.",
	},
	models.KindInterviewBooking: {
		Kind: models.KindInterviewBooking,
		Fields: []FieldRule{
			{Name: "name", Label: "Name", Rules: requiredRule},
			{Name: "email", Label: "Email", Rules: requiredRule},
			{Name: "mobile", Label: "Mobile", Rules: requiredRule},
			{Name: "stack", Label: "Stack", Rules: requiredRule},
			{Name: "experience", Label: "Experience", Rules: requiredRule},
		},
		Title: "Mock Interview Booking Received",
		Subject: func(fields map[string]string) string {
			return fmt.Sprintf("Mock interview booking confirmed for %s", fields["stack"])
		},
		Greeting: template.Must(template.New("interview_booking").Parse(
			`Hi {{.name}}, your {{.stack}} mock interview request is in. ` +
				`We will reach out on {{.mobile}} to schedule a slot.`)),
		SuccessMessage: "Mock interview stored successfully.",
		FailureMessage: "Failed to save mock interview booking.",
	},
	models.KindFeedback: {
		Kind: models.KindFeedback,
		Fields: []FieldRule{
			{Name: "name", Label: "Name", Rules: requiredRule},
			{Name: "email", Label: "Email", Rules: requiredRule},
			{Name: "feedbackType", Label: "Feedback Type", Rules: requiredRule},
			{Name: "rating", Label: "Rating", Rules: requiredRule},
			{Name: "message", Label: "Message", Rules: longTextRule},
		},
		Title: "Feedback Received",
		Subject: func(map[string]string) string {
			return "Thanks for sharing your feedback"
		},
		Greeting: template.Must(template.New("feedback").Parse(
			`Hi {{.name}}, thanks for taking the time to share your feedback with us.`)),
		SuccessMessage: "Feedback stored successfully.",
		FailureMessage: "Failed to save feedback.",
	},
}

// SchemaFor returns the form schema for a submission kind
func SchemaFor(kind models.Kind) (*FormSchema, bool) {
	schema, ok := formSchemas[kind]
	return schema, ok
}

// Normalize keeps only the schema's fields, trimmed
func (s *FormSchema) Normalize(fields map[string]string) map[string]string {
	normalized := make(map[string]string, len(s.Fields))
	for _, field := range s.Fields {
		normalized[field.Name] = strings.TrimSpace(fields[field.Name])
	}
	return normalized
}

// Validate checks normalized fields against the schema rules. The returned
// error wraps ErrInvalidInput and carries a client-safe message naming every
// offending field in form order.
func (s *FormSchema) Validate(fields map[string]string) error {
	data := make(map[string]interface{}, len(fields))
	rules := make(map[string]interface{}, len(s.Fields))
	for _, field := range s.Fields {
		data[field.Name] = fields[field.Name]
		rules[field.Name] = field.Rules
	}

	violations := validate.ValidateMap(data, rules)
	if len(violations) == 0 {
		return nil
	}

	var missing, tooLong, invalid []string
	for _, field := range s.Fields {
		violation, ok := violations[field.Name]
		if !ok {
			continue
		}
		switch violationTag(violation) {
		case "required":
			missing = append(missing, field.Name)
		case "max":
			tooLong = append(tooLong, field.Name)
		default:
			invalid = append(invalid, field.Name)
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("All fields are required: missing %s", strings.Join(missing, ", ")))
	}
	for _, name := range tooLong {
		parts = append(parts, fmt.Sprintf("%s must be at most %d characters", name, repository.MaxLongTextLength))
	}
	if len(invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid value for %s", strings.Join(invalid, ", ")))
	}

	offending := make([]string, 0, len(violations))
	offending = append(offending, missing...)
	offending = append(offending, tooLong...)
	offending = append(offending, invalid...)
	err := apperrors.InvalidInputError(strings.Join(offending, ","), "failed validation")
	return apperrors.WithPublicMessage(err, strings.Join(parts, "; ")+".")
}

func violationTag(violation interface{}) string {
	err, ok := violation.(error)
	if !ok {
		return ""
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return fieldErrors[0].Tag()
	}
	return ""
}

// RenderSummary builds the HTML body of the acknowledgement email.
// All values are escaped.
func (s *FormSchema) RenderSummary(fields map[string]string) (string, error) {
	var greeting bytes.Buffer
	if err := s.Greeting.Execute(&greeting, fields); err != nil {
		return "", fmt.Errorf("render greeting: %w", err)
	}

	rows := make([]summaryRow, 0, len(s.Fields))
	for _, field := range s.Fields {
		rows = append(rows, summaryRow{Label: field.Label, Value: fields[field.Name]})
	}

	var body bytes.Buffer
	err := summaryTemplate.Execute(&body, struct {
		Greeting template.HTML
		Title    string
		Rows     []summaryRow
	}{
		//nolint:gosec // greeting output is already escaped by html/template
		Greeting: template.HTML(greeting.String()),
		Title:    s.Title,
		Rows:     rows,
	})
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}

	return body.String(), nil
}
