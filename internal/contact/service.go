// Package contact implements the contact form intake: per-client rate
// limiting, shape validation, reCAPTCHA verification and dispatch of a
// notification email to the site operator.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"performer-site-backend/internal/mail"
	"performer-site-backend/internal/ratelimit"
	"performer-site-backend/internal/recaptcha"
)

// Verification selects whether submissions are checked with the
// verification service. It is either VerificationEnabled or
// VerificationDisabled.
type Verification interface {
	isVerification()
}

// VerificationEnabled verifies tokens and accepts scores at or above
// MinScore.
type VerificationEnabled struct {
	Verifier recaptcha.Verifier
	MinScore float64
}

// VerificationDisabled skips verification entirely.
type VerificationDisabled struct{}

func (VerificationEnabled) isVerification()  {}
func (VerificationDisabled) isVerification() {}

// Receipt acknowledges a delivered submission.
type Receipt struct {
	MessageID string
	Reference string
}

// Config wires a Service.
type Config struct {
	Limiter      ratelimit.Limiter
	Verification Verification
	// Transport is nil when no email credential is configured.
	Transport mail.Transport
	Composer  Composer
	// UpstreamTimeout bounds each call to the verification service and the
	// mail transport. Zero means no extra bound.
	UpstreamTimeout time.Duration
	Logger          *slog.Logger
}

// Service processes contact submissions.
type Service struct {
	limiter      ratelimit.Limiter
	verification Verification
	transport    mail.Transport
	composer     Composer
	timeout      time.Duration
	log          *slog.Logger
	newRef       func() string
}

// NewService creates a contact service.
func NewService(cfg Config) *Service {
	verification := cfg.Verification
	if verification == nil {
		verification = VerificationDisabled{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		limiter:      cfg.Limiter,
		verification: verification,
		transport:    cfg.Transport,
		composer:     cfg.Composer,
		timeout:      cfg.UpstreamTimeout,
		log:          log,
		newRef:       uuid.NewString,
	}
}

// Admit consumes one rate-limit slot for clientKey. It returns a
// *RateLimitError once the key's quota for the window is used up.
func (s *Service) Admit(ctx context.Context, clientKey string) error {
	decision, err := s.limiter.TryAcquire(ctx, clientKey)
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}
	if !decision.Allowed {
		s.log.InfoContext(ctx, "contact submission rate limited",
			"client", clientKey, "reset_at", decision.ResetAt)
		return &RateLimitError{ResetAt: decision.ResetAt}
	}
	return nil
}

// Submit validates, verifies and delivers an admitted submission. Each step
// short-circuits the rest.
func (s *Service) Submit(ctx context.Context, clientKey string, req SubmissionRequest) (*Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.verify(ctx, clientKey, req.VerificationToken); err != nil {
		return nil, err
	}

	if s.transport == nil {
		s.log.ErrorContext(ctx, "contact submission dropped: mail transport not configured")
		return nil, ErrMailNotConfigured
	}

	ref := s.newRef()
	log := s.log.With("ref", ref, "client", clientKey)

	msg, err := s.composer.Compose(req, ref)
	if err != nil {
		return nil, err
	}

	sendCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.transport.Send(sendCtx, msg)
	if err != nil {
		log.ErrorContext(ctx, "email sending error", "error", err)
		sendErr := &SendError{Err: err}
		var apiErr *mail.APIError
		if errors.As(err, &apiErr) {
			sendErr.Detail = apiErr.Message
		}
		return nil, sendErr
	}

	log.InfoContext(ctx, "contact submission delivered", "message_id", id)
	return &Receipt{MessageID: id, Reference: ref}, nil
}

func (s *Service) verify(ctx context.Context, clientKey, token string) error {
	switch v := s.verification.(type) {
	case VerificationDisabled:
		s.log.WarnContext(ctx, "recaptcha not configured, skipping verification", "client", clientKey)
		return nil

	case VerificationEnabled:
		if token == "" {
			s.log.WarnContext(ctx, "no recaptcha token supplied, skipping verification", "client", clientKey)
			return nil
		}

		vctx, cancel := s.withTimeout(ctx)
		defer cancel()

		outcome, err := v.Verifier.Verify(vctx, token, clientKey)
		if err != nil {
			s.log.ErrorContext(ctx, "recaptcha verification error", "client", clientKey, "error", err)
			return fmt.Errorf("%w: %w", ErrVerificationUnavailable, err)
		}
		if !outcome.Success || outcome.Score < v.MinScore {
			s.log.WarnContext(ctx, "recaptcha verification failed",
				"client", clientKey, "success", outcome.Success,
				"score", outcome.Score, "error_codes", outcome.ErrorCodes)
			return ErrVerificationFailed
		}
		return nil

	default:
		return fmt.Errorf("unknown verification policy %T", v)
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
