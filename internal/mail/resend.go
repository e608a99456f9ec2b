package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// DefaultResendBaseURL is Resend's public API.
const DefaultResendBaseURL = "https://api.resend.com/"

// resendErrorPrefix marks errors the SDK built from a provider response
// rather than a transport failure.
const resendErrorPrefix = "[ERROR]: "

// Resend sends email through the Resend API.
type Resend struct {
	client *resend.Client
}

// NewResend creates a Resend transport. An empty baseURL selects
// DefaultResendBaseURL; a nil httpClient gets one with the given timeout.
func NewResend(apiKey, baseURL string, httpClient *http.Client, timeout time.Duration) (*Resend, error) {
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse resend base url: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	client := resend.NewCustomClient(httpClient, apiKey)
	client.BaseURL = u
	return &Resend{client: client}, nil
}

// Send implements Transport.
func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	if err := validate(msg); err != nil {
		return "", err
	}

	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		if detail, ok := strings.CutPrefix(err.Error(), resendErrorPrefix); ok {
			return "", &APIError{Message: detail}
		}
		return "", fmt.Errorf("send email: %w", err)
	}

	return sent.Id, nil
}
