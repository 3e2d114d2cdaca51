package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	Catalog   CatalogConfig
	Notify    NotifyConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Debug    bool
}

// CatalogConfig controls the workflow catalog cache
type CatalogConfig struct {
	TTL time.Duration
	// Cron spec for the background cache pre-warm job.
	WarmSchedule string
}

// NotifyConfig controls the change-notification hub
type NotifyConfig struct {
	// Quiet period before a batch of change events is broadcast.
	DebounceWindow time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3210"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "atelier"),
			Debug:    getEnv("DB_DEBUG", "false") == "true",
		},
		Catalog: CatalogConfig{
			TTL:          getDuration("CATALOG_TTL", 5*time.Minute),
			WarmSchedule: getEnv("CATALOG_WARM_SCHEDULE", "@every 4m"),
		},
		Notify: NotifyConfig{
			DebounceWindow: getDuration("NOTIFY_DEBOUNCE", 3*time.Second),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration gets a duration environment variable with default value
func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
