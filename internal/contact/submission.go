package contact

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SubmissionRequest is a contact form submission as posted by the site's
// form component.
type SubmissionRequest struct {
	Name              string `json:"name" validate:"min=2"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"min=10"`
	EventType         string `json:"eventType" validate:"min=1"`
	Date              string `json:"date,omitempty"`
	Message           string `json:"message" validate:"min=10"`
	VerificationToken string `json:"recaptchaToken,omitempty"`
}

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldMessages are the user-facing messages shown next to each form field.
var fieldMessages = map[string]string{
	"name":      "Name is required",
	"email":     "Invalid email address",
	"phone":     "Phone number is required",
	"eventType": "Please select an event type",
	"message":   "Message must be at least 10 characters",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so the form can match them up.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the submission's shape. It returns nil or a
// *ValidationError listing every invalid field.
func (r SubmissionRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()]
		if !ok {
			msg = "is invalid"
		}
		fields = append(fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return &ValidationError{Fields: fields}
}
