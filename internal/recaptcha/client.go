// Package recaptcha verifies human-interaction tokens against Google's
// reCAPTCHA siteverify endpoint.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL is Google's siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Outcome is the verification service's verdict for one token.
type Outcome struct {
	Success bool
	// Score is in [0,1]. A missing or non-numeric score is 0.
	Score      float64
	ErrorCodes []string
}

// Verifier checks a token submitted by a client at remoteIP.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (Outcome, error)
}

// UnavailableError reports that the verification service could not be
// reached or did not produce a usable answer.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return "recaptcha unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// siteverifyResponse mirrors the JSON body returned by siteverify. Score is
// left raw so a non-numeric value can be treated as zero.
type siteverifyResponse struct {
	Success     bool            `json:"success"`
	Score       json.RawMessage `json:"score"`
	Action      string          `json:"action"`
	ChallengeTS string          `json:"challenge_ts"`
	Hostname    string          `json:"hostname"`
	ErrorCodes  []string        `json:"error-codes"`
}

// Client calls the siteverify endpoint with a server-side secret.
type Client struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewClient creates a verification client. An empty verifyURL selects
// DefaultVerifyURL; a nil httpClient gets one with the given timeout.
func NewClient(secret, verifyURL string, httpClient *http.Client, timeout time.Duration) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		secret:     secret,
		verifyURL:  verifyURL,
		httpClient: httpClient,
	}
}

// Verify posts the token to siteverify. Transport failures, non-2xx replies
// and undecodable bodies are returned as *UnavailableError.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (Outcome, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	form.Set("remoteip", remoteIP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{}, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Outcome{}, &UnavailableError{Err: fmt.Errorf("siteverify returned status %d", resp.StatusCode)}
	}

	var body siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err != nil {
		return Outcome{}, &UnavailableError{Err: fmt.Errorf("decode siteverify response: %w", err)}
	}

	return Outcome{
		Success:    body.Success,
		Score:      parseScore(body.Score),
		ErrorCodes: body.ErrorCodes,
	}, nil
}

func parseScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0
	}
	return score
}
