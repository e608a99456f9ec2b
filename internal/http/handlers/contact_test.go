package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"performer-site-backend/internal/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContacter is a mock implementation of the Contacter interface
type MockContacter struct {
	mock.Mock
}

func (m *MockContacter) Admit(ctx context.Context, clientKey string) error {
	args := m.Called(ctx, clientKey)
	return args.Error(0)
}

func (m *MockContacter) Submit(ctx context.Context, clientKey string, req contact.SubmissionRequest) (*contact.Receipt, error) {
	args := m.Called(ctx, clientKey, req)
	receipt, _ := args.Get(0).(*contact.Receipt)
	return receipt, args.Error(1)
}

type errorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func janeDoe() contact.SubmissionRequest {
	return contact.SubmissionRequest{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Phone:     "9876543210",
		EventType: "wedding",
		Message:   "Please send a quote for June.",
	}
}

func serve(t *testing.T, h *ContactHandler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/contact", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func newHandler(c Contacter) *ContactHandler {
	return NewContactHandler(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestContactSubmit_Success(t *testing.T) {
	c := new(MockContacter)
	c.On("Admit", mock.Anything, "203.0.113.5").Return(nil)
	c.On("Submit", mock.Anything, "203.0.113.5", janeDoe()).
		Return(&contact.Receipt{MessageID: "msg-1", Reference: "ref"}, nil)

	w := serve(t, newHandler(c), mustJSON(t, janeDoe()),
		map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp ContactResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "msg-1", resp.MessageID)
	c.AssertExpectations(t)
}

func TestContactSubmit_RateLimitedBeforeParsing(t *testing.T) {
	c := new(MockContacter)
	c.On("Admit", mock.Anything, UnknownClient).
		Return(&contact.RateLimitError{ResetAt: time.Now().Add(30 * time.Minute)})

	w := serve(t, newHandler(c), `not json`, nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Too many requests. Please try again later.", resp.Error)
	c.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestContactSubmit_InvalidJSON(t *testing.T) {
	c := new(MockContacter)
	c.On("Admit", mock.Anything, mock.Anything).Return(nil)

	w := serve(t, newHandler(c), `{"name":`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid form data", resp.Error)
	c.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestContactSubmit_OversizedBody(t *testing.T) {
	c := new(MockContacter)
	c.On("Admit", mock.Anything, mock.Anything).Return(nil)

	body := `{"message":"` + strings.Repeat("a", 70<<10) + `"}`
	w := serve(t, newHandler(c), body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactSubmit_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail bool
	}{
		{
			name: "validation",
			err: &contact.ValidationError{Fields: []contact.FieldError{
				{Field: "phone", Message: "Phone number is required"},
			}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid form data",
			wantDetail: true,
		},
		{
			name:       "verification failed",
			err:        contact.ErrVerificationFailed,
			wantStatus: http.StatusBadRequest,
			wantError:  "reCAPTCHA verification failed",
		},
		{
			name:       "verification unavailable",
			err:        errors.Join(contact.ErrVerificationUnavailable, errors.New("timeout")),
			wantStatus: http.StatusBadGateway,
			wantError:  "reCAPTCHA verification is temporarily unavailable. Please try again.",
		},
		{
			name:       "mail not configured",
			err:        contact.ErrMailNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server configuration error",
		},
		{
			name:       "send failed with detail",
			err:        &contact.SendError{Detail: "domain not verified", Err: errors.New("403")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to send email. Please try again.",
			wantDetail: true,
		},
		{
			name:       "send failed without detail",
			err:        &contact.SendError{Err: errors.New("connection reset")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to send email. Please try again.",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(MockContacter)
			c.On("Admit", mock.Anything, mock.Anything).Return(nil)
			c.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			w := serve(t, newHandler(c), mustJSON(t, janeDoe()), nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			if tt.wantDetail {
				assert.NotEmpty(t, resp.Details)
			} else {
				assert.Empty(t, resp.Details)
			}
		})
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		want      string
	}{
		{name: "absent", forwarded: "", want: UnknownClient},
		{name: "single", forwarded: "203.0.113.5", want: "203.0.113.5"},
		{name: "list", forwarded: "203.0.113.5, 70.41.3.18, 150.172.238.178", want: "203.0.113.5"},
		{name: "padded", forwarded: "  198.51.100.2 ,10.0.0.1", want: "198.51.100.2"},
		{name: "empty first entry", forwarded: ", 10.0.0.1", want: UnknownClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientKey(req))
		})
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1800", retryAfter(now.Add(30*time.Minute), now))
	assert.Equal(t, "2", retryAfter(now.Add(1500*time.Millisecond), now))
	assert.Equal(t, "1", retryAfter(now.Add(-time.Second), now))
}

func TestReadinessCheck(t *testing.T) {
	w := httptest.NewRecorder()
	ReadinessCheck(Readiness{MailConfigured: false})(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	ReadinessCheck(Readiness{MailConfigured: true, VerificationEnabled: true})(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"verification":"enabled"`)
}
