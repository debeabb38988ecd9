package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port               string
	AllowedOrigins     []string
	LogLevel           string
	DatabaseURL        string
	RedisURL           string
	Environment        string
	PublicBaseURL      string // Base URL encoded into team QR links
	AdminEmail         string
	AdminPassword      string
	AdminPasskey       string // Second factor for the bulk data wipe
	JWTSecret          string
	CodeTTL            time.Duration // Lifetime of an issued voting code
	DevicePollInterval time.Duration // Paired-device poll cadence
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		Environment:        getEnv("ENVIRONMENT", "production"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminPasskey:       getEnv("ADMIN_PASSKEY", "0000"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CodeTTL:            getDurationEnv("CODE_TTL", 45*time.Minute),
		DevicePollInterval: getDurationEnv("DEVICE_POLL_INTERVAL", 2*time.Second),
	}, nil
}

// Origin reports where this deployment runs; recorded as provenance on
// issued codes and registered teams. Informational only.
func (c *Config) Origin() string {
	if c.Environment == "development" || c.Environment == "staging" {
		return "localhost"
	}
	return "hosted"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
