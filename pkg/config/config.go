package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"admind/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Session       SessionConfig
	Uploads       UploadsConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// CORS origins allowed to send the session cookie
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// SessionConfig holds session token settings
type SessionConfig struct {
	Secret string
}

// UploadsConfig holds image upload storage settings
type UploadsConfig struct {
	Dir string
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("ADMIN_HOST", "0.0.0.0"),
			Port:            getEnv("ADMIN_PORT", "8000"),
			ReadTimeout:     getEnvDuration("ADMIN_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("ADMIN_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("ADMIN_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("ADMIN_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  splitList(getEnv("ADMIN_CORS_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			URL:          getEnv("ADMIN_POSTGRES_URL", ""),
			MaxOpenConns: getEnvInt("ADMIN_POSTGRES_MAX_CONNS", 25),
			MaxIdleConns: getEnvInt("ADMIN_POSTGRES_IDLE_CONNS", 5),
			ConnLifetime: getEnvDuration("ADMIN_POSTGRES_CONN_LIFETIME", 5*time.Minute),
		},
		Session: SessionConfig{
			Secret: getEnv("ADMIN_SESSION_SECRET", ""),
		},
		Uploads: UploadsConfig{
			Dir: getEnv("ADMIN_UPLOADS_DIR", "./uploads"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       parseLogLevel(getEnv("ADMIN_LOG_LEVEL", "info")),
			MetricsEnabled: getEnvBool("ADMIN_METRICS_ENABLED", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads dir is required")
	}
	return nil
}

// Addr returns the host:port the server listens on
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// splitList splits a comma-separated environment value, trimming whitespace
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var parsed int
		if _, err := fmt.Sscanf(value, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
