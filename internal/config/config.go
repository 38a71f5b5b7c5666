package config

import (
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	APIBaseURL     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string
	RequestTimeout time.Duration
	LogLevel       string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "https://story-squad.herokuapp.com"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./storysquad.db"),
		DatabaseURL:    getEnv("DB_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		RequestTimeout: 10 * time.Second,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
