package contact

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Rejection classes returned by Service. Match with errors.Is.
var (
	ErrRateLimited             = errors.New("too many requests")
	ErrVerificationFailed      = errors.New("recaptcha verification failed")
	ErrVerificationUnavailable = errors.New("recaptcha verification unavailable")
	ErrMailNotConfigured       = errors.New("mail transport not configured")
	ErrSendFailed              = errors.New("failed to send email")
)

// ValidationError lists the invalid fields of a rejected submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid submission: " + strings.Join(names, ", ")
}

// RateLimitError is returned when a client key has used its quota for the
// current window.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests until %s", e.ResetAt.UTC().Format(time.RFC3339))
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// SendError wraps a transport failure. Detail is the provider's own message
// when it returned a structured error.
type SendError struct {
	Detail string
	Err    error
}

func (e *SendError) Error() string {
	return "failed to send email: " + e.Err.Error()
}

func (e *SendError) Unwrap() error { return e.Err }

func (e *SendError) Is(target error) bool { return target == ErrSendFailed }
