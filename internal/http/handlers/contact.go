package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"performer-site-backend/internal/contact"
	"performer-site-backend/internal/http/response"
)

// UnknownClient is the rate-limit key used when no forwarded address is
// present.
const UnknownClient = "unknown"

// Contacter is the contact intake the handler drives.
type Contacter interface {
	Admit(ctx context.Context, clientKey string) error
	Submit(ctx context.Context, clientKey string, req contact.SubmissionRequest) (*contact.Receipt, error)
}

// ContactHandler serves the contact form endpoint.
type ContactHandler struct {
	contact Contacter
	log     *slog.Logger
	now     func() time.Time
}

// NewContactHandler creates a new contact handler
func NewContactHandler(c Contacter, log *slog.Logger) *ContactHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContactHandler{
		contact: c,
		log:     log,
		now:     time.Now,
	}
}

// ContactResponse is returned for a delivered submission.
type ContactResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := ClientKey(r)

	if err := h.contact.Admit(ctx, key); err != nil {
		h.writeError(w, r, err)
		return
	}

	var req contact.SubmissionRequest
	if err := response.Decode(w, r, &req); err != nil {
		h.log.InfoContext(ctx, "invalid contact form body", "client", key, "error", err)
		response.Error(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	receipt, err := h.contact.Submit(ctx, key, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, ContactResponse{
		Success:   true,
		MessageID: receipt.MessageID,
	})
}

func (h *ContactHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rateErr  *contact.RateLimitError
		validErr *contact.ValidationError
		sendErr  *contact.SendError
	)

	switch {
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", retryAfter(rateErr.ResetAt, h.now()))
		response.Error(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")

	case errors.As(err, &validErr):
		h.log.InfoContext(r.Context(), "invalid contact form data", "client", ClientKey(r), "error", err)
		response.ErrorWithDetails(w, http.StatusBadRequest, "Invalid form data", validErr.Fields)

	case errors.Is(err, contact.ErrVerificationFailed):
		response.Error(w, http.StatusBadRequest, "reCAPTCHA verification failed")

	case errors.Is(err, contact.ErrVerificationUnavailable):
		response.Error(w, http.StatusBadGateway, "reCAPTCHA verification is temporarily unavailable. Please try again.")

	case errors.Is(err, contact.ErrMailNotConfigured):
		response.Error(w, http.StatusInternalServerError, "Server configuration error")

	case errors.As(err, &sendErr):
		if sendErr.Detail != "" {
			response.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to send email. Please try again.", sendErr.Detail)
			return
		}
		response.Error(w, http.StatusInternalServerError, "Failed to send email. Please try again.")

	default:
		h.log.ErrorContext(r.Context(), "contact form error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// ClientKey derives the rate-limit key from the first X-Forwarded-For entry.
// The header is client-controlled, so the key is advisory.
func ClientKey(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded == "" {
		return UnknownClient
	}
	first, _, _ := strings.Cut(forwarded, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return UnknownClient
	}
	return first
}

func retryAfter(resetAt, now time.Time) string {
	secs := math.Ceil(resetAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(int(secs))
}
