package router

import (
	"log/slog"
	"net/http"
	"time"

	"performer-site-backend/internal/config"
	"performer-site-backend/internal/http/handlers"
	"performer-site-backend/internal/http/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Contact   handlers.Contacter
	Readiness handlers.Readiness
	Logger    *slog.Logger
}

// Setup creates and configures the HTTP router
func Setup(cfg *config.Config, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Logger)
	if cfg.RateLimit.GlobalPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit.GlobalPerMinute, 1*time.Minute))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	// Health check endpoints
	r.Get("/health", handlers.HealthCheck)
	r.Get("/healthz", handlers.LivenessCheck)
	r.Get("/readyz", handlers.ReadinessCheck(deps.Readiness))

	contactHandler := handlers.NewContactHandler(deps.Contact, deps.Logger)
	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.NoStore)
		api.Post("/contact", contactHandler.Submit)
	})

	// Prebuilt site pages, when deployed alongside the API
	if cfg.StaticDir != "" {
		r.With(middleware.CacheControl(3600)).Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
