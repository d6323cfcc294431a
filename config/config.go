package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	JWTSecret []byte
	JWTIssuer string

	ResendAPIKey string
	FromEmail    string
	AppBaseURL   string

	SessionTTL           time.Duration
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration

	SecureCookies bool
}

// Load reads configuration from the environment, after loading .env when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            []byte(os.Getenv("JWT_SECRET")),
		JWTIssuer:            getEnv("JWT_ISSUER", "authgate"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		FromEmail:            os.Getenv("FROM_EMAIL_FIELD"),
		AppBaseURL:           getEnv("PUBLIC_APP_URL", "http://localhost:8080"),
		SessionTTL:           getDuration("SESSION_TTL", 24*time.Hour),
		VerificationTokenTTL: getDuration("VERIFICATION_TOKEN_TTL", time.Hour),
		ResetTokenTTL:        getDuration("RESET_TOKEN_TTL", time.Hour),
		SecureCookies:        os.Getenv("COOKIE_SECURE") != "false",
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
