package handlers

import (
	"net/http"
	"time"

	"performer-site-backend/internal/http/response"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// HealthCheck handles basic health check
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "performer-site-backend",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readiness describes which upstreams the contact endpoint can use.
type Readiness struct {
	MailConfigured      bool
	VerificationEnabled bool
}

// ReadinessCheck creates a readiness check handler. The service is not ready
// while no mail transport is configured, since every submission would fail.
func ReadinessCheck(rd Readiness) http.HandlerFunc {
	checks := map[string]string{
		"mail":         "ok",
		"verification": "enabled",
	}
	if !rd.MailConfigured {
		checks["mail"] = "not_configured"
	}
	if !rd.VerificationEnabled {
		checks["verification"] = "disabled"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !rd.MailConfigured {
			response.JSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  "Mail transport not configured",
				"checks": checks,
			})
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{
			"status": "ready",
			"checks": checks,
		})
	}
}

// LivenessCheck handles liveness probe
func LivenessCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status": "alive",
	})
}
