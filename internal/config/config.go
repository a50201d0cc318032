// Package config provides centralized configuration for the import server
// and batch driver. Settings come from environment variables with defaults
// and are validated on startup so misconfiguration fails fast.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Import  ImportConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 3000)
	Port int `env:"SERVER_PORT" default:"3000"`

	// ReadTimeout is the maximum duration for reading the request body
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout caps graceful shutdown
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the per-request middleware timeout
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// BackendConfig selects and tunes the persistence backend.
type BackendConfig struct {
	// DatabaseURL is the PostgreSQL connection string. When empty the
	// server runs on the in-memory backend (useful for trials and tests).
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`
}

// ImportConfig tunes the two-phase import protocol.
type ImportConfig struct {
	// SessionTTL is the validity window between preview and confirm
	SessionTTL time.Duration `env:"IMPORT_SESSION_TTL" default:"15m"`

	// MaxContentSize caps the CSV payload accepted by preview (bytes)
	MaxContentSize int64 `env:"IMPORT_MAX_CONTENT_SIZE" default:"10485760"`

	// HealthTimeout bounds the batch driver's wait for the backend
	HealthTimeout time.Duration `env:"IMPORT_HEALTH_TIMEOUT" default:"15s"`

	// HealthInterval is the poll interval while waiting
	HealthInterval time.Duration `env:"IMPORT_HEALTH_INTERVAL" default:"500ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Validate checks the configuration and reports every failure at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Import.SessionTTL <= 0 {
		errs = append(errs, "IMPORT_SESSION_TTL must be positive")
	}
	if c.Import.MaxContentSize <= 0 {
		errs = append(errs, "IMPORT_MAX_CONTENT_SIZE must be positive")
	}
	if c.Import.HealthTimeout <= 0 {
		errs = append(errs, "IMPORT_HEALTH_TIMEOUT must be positive")
	}
	if c.Import.HealthInterval <= 0 {
		errs = append(errs, "IMPORT_HEALTH_INTERVAL must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be debug, info, warn, or error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
