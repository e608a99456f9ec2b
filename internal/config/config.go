package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultNotifyAddress receives contact submissions when YOUR_EMAIL is unset.
const DefaultNotifyAddress = "jeesonfranz@gmail.com"

// Config holds all configuration for the application
type Config struct {
	Port            string
	Log             LogConfig
	CORS            CORSConfig
	Mail            MailConfig
	Recaptcha       RecaptchaConfig
	RateLimit       RateLimitConfig
	UpstreamTimeout time.Duration
	StaticDir       string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MailConfig holds mail transport configuration
type MailConfig struct {
	Provider      string
	APIKey        string
	BaseURL       string
	SESRegion     string
	From          string
	NotifyAddress string
	SiteName      string
}

// RecaptchaConfig holds verification service configuration. An empty Secret
// disables verification.
type RecaptchaConfig struct {
	Secret    string
	VerifyURL string
	MinScore  float64
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests        int
	Window          time.Duration
	Store           string
	GlobalPerMinute int
}

// Mail provider names.
const (
	ProviderResend = "resend"
	ProviderSES    = "ses"
)

// Rate limit store names.
const (
	StoreMemory = "memory"
	StoreUlule  = "ulule"
)

// Enabled reports whether submissions should be verified.
func (c RecaptchaConfig) Enabled() bool {
	return c.Secret != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Mail: MailConfig{
			Provider:      strings.ToLower(getEnv("MAIL_PROVIDER", ProviderResend)),
			APIKey:        getEnv("RESEND_API_KEY", ""),
			BaseURL:       getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			SESRegion:     getEnv("SES_REGION", ""),
			From:          getEnv("MAIL_FROM", "Jeeson Franz Website <onboarding@resend.dev>"),
			NotifyAddress: getEnv("YOUR_EMAIL", DefaultNotifyAddress),
			SiteName:      getEnv("SITE_NAME", "jeeson.in"),
		},
		Recaptcha: RecaptchaConfig{
			Secret:    getEnv("RECAPTCHA_SECRET_KEY", ""),
			VerifyURL: getEnv("RECAPTCHA_VERIFY_URL", "https://www.google.com/recaptcha/api/siteverify"),
			MinScore:  getEnvAsFloat("RECAPTCHA_MIN_SCORE", 0.5),
		},
		RateLimit: RateLimitConfig{
			Requests:        getEnvAsPositiveInt("CONTACT_RATE_LIMIT", 5),
			Window:          getEnvAsDuration("CONTACT_RATE_WINDOW", time.Hour),
			Store:           strings.ToLower(getEnv("RATE_LIMIT_STORE", StoreMemory)),
			GlobalPerMinute: getEnvAsInt("GLOBAL_RATE_LIMIT", 100),
		},
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		StaticDir:       getEnv("STATIC_DIR", ""),
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsPositiveInt(key string, defaultValue int) int {
	if v := getEnvAsInt(key, defaultValue); v > 0 {
		return v
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		values := strings.Split(value, ",")
		for i, v := range values {
			values[i] = strings.TrimSpace(v)
		}
		return values
	}
	return defaultValue
}
