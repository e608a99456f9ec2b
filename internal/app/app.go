// Package app assembles the contact service and HTTP router from
// configuration. Both the long-running server and the Lambda entrypoint use
// it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"performer-site-backend/internal/config"
	"performer-site-backend/internal/contact"
	"performer-site-backend/internal/http/handlers"
	"performer-site-backend/internal/http/response"
	"performer-site-backend/internal/http/router"
	"performer-site-backend/internal/mail"
	"performer-site-backend/internal/ratelimit"
	"performer-site-backend/internal/recaptcha"
)

// App holds the wired HTTP handler and its background maintenance.
type App struct {
	Router *chi.Mux
	Logger *slog.Logger

	window  *ratelimit.FixedWindow
	sweepIn time.Duration
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// New wires the application. A missing mail credential is not an error: the
// contact endpoint reports it per request.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Logger: logger}

	limiter, err := a.newLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	transport, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var verification contact.Verification = contact.VerificationDisabled{}
	if cfg.Recaptcha.Enabled() {
		verification = contact.VerificationEnabled{
			Verifier: recaptcha.NewClient(cfg.Recaptcha.Secret, cfg.Recaptcha.VerifyURL, nil, cfg.UpstreamTimeout),
			MinScore: cfg.Recaptcha.MinScore,
		}
	} else {
		logger.Warn("RECAPTCHA_SECRET_KEY not set, contact submissions will not be verified")
	}

	svc := contact.NewService(contact.Config{
		Limiter:      limiter,
		Verification: verification,
		Transport:    transport,
		Composer: contact.Composer{
			From:     cfg.Mail.From,
			To:       cfg.Mail.NotifyAddress,
			SiteName: cfg.Mail.SiteName,
		},
		UpstreamTimeout: cfg.UpstreamTimeout,
		Logger:          logger,
	})

	response.SetLogger(logger)
	a.Router = router.Setup(cfg, router.Deps{
		Contact: svc,
		Readiness: handlers.Readiness{
			MailConfigured:      transport != nil,
			VerificationEnabled: cfg.Recaptcha.Enabled(),
		},
		Logger: logger,
	})

	return a, nil
}

func (a *App) newLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		a.window = ratelimit.NewFixedWindow(cfg.Requests, cfg.Window)
		a.sweepIn = min(cfg.Window, 10*time.Minute)
		return a.window, nil
	case config.StoreUlule:
		return ratelimit.NewMemoryStoreLimiter(cfg.Requests, cfg.Window), nil
	default:
		return nil, fmt.Errorf("unknown RATE_LIMIT_STORE %q", cfg.Store)
	}
}

// newTransport returns nil when no credential is configured for the
// selected provider.
func newTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (mail.Transport, error) {
	switch cfg.Mail.Provider {
	case config.ProviderResend, "":
		if cfg.Mail.APIKey == "" {
			logger.Warn("RESEND_API_KEY not set, contact submissions will fail")
			return nil, nil
		}
		resend, err := mail.NewResend(cfg.Mail.APIKey, cfg.Mail.BaseURL, nil, cfg.UpstreamTimeout)
		if err != nil {
			return nil, err
		}
		return resend, nil

	case config.ProviderSES:
		ses, err := mail.NewSES(ctx, cfg.Mail.SESRegion)
		if err != nil {
			logger.Warn("SES not configured, contact submissions will fail", "error", err)
			return nil, nil
		}
		return ses, nil

	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", cfg.Mail.Provider)
	}
}

// RunJanitor evicts expired rate-limit records until ctx is done. It returns
// immediately when the configured store cleans up after itself.
func (a *App) RunJanitor(ctx context.Context) {
	if a.window == nil {
		return
	}
	a.window.Run(ctx, a.sweepIn)
}
