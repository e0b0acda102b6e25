package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Required settings fail closed: a missing DATABASE_URL is a startup error,
// never a silent default.

var ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")

type Config struct {
	Env  string
	Port int

	DatabaseURL string

	// Session cookie policy
	SessionCookieName   string
	SessionTTL          time.Duration
	SessionCookieSecure bool
	// When true a new login supersedes all prior sessions of the same user.
	SingleSessionPerUser bool

	SiteURL string

	// Optional backing services
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	OTLPEndpoint  string

	// Optional initial admin account seeded at startup.
	AdminEmail    string
	AdminPassword string

	// Fixed-window limit for the auth endpoints, per key per minute.
	AuthRateLimit int
}

func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	ttlMinutes := getEnvInt("AUTH_SESSION_TTL_MINUTES", 4320) // 3 days

	if ttlMinutes < 1 {
		return Config{}, fmt.Errorf("config: AUTH_SESSION_TTL_MINUTES must be positive, got %d", ttlMinutes)
	}

	secure := env == "prod" || getEnvBool("AUTH_SESSION_COOKIE_SECURE", false)

	cfg := Config{
		Env:                  env,
		Port:                 getEnvInt("PORT", 8080),
		DatabaseURL:          dbURL,
		SessionCookieName:    getEnv("AUTH_SESSION_COOKIE_NAME", "meblomat_session"),
		SessionTTL:           time.Duration(ttlMinutes) * time.Minute,
		SessionCookieSecure:  secure,
		SingleSessionPerUser: getEnvBool("AUTH_SINGLE_SESSION", true),
		SiteURL:              getEnv("SITE_URL", "http://localhost:8080"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AdminEmail:           os.Getenv("ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
		AuthRateLimit:        getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
	}

	return cfg, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
