// Package mail dispatches notification emails through a transactional email
// provider.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Message is a single outbound HTML email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Transport sends a message and returns the provider's message identifier.
type Transport interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ErrInvalidMessage is returned for messages missing a sender, recipient or
// subject.
var ErrInvalidMessage = errors.New("invalid email message: missing required fields")

// APIError is a structured rejection reported by the provider.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("mail provider error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " %d", e.StatusCode)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " (%s)", e.Name)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func validate(msg Message) error {
	if msg.From == "" || len(msg.To) == 0 || msg.Subject == "" {
		return ErrInvalidMessage
	}
	return nil
}
