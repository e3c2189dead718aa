// Package config loads and validates application configuration from
// environment variables and optional config files.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	OpenF1   OpenF1Config   `mapstructure:"openf1"   validate:"required"`
	Ingest   IngestConfig   `mapstructure:"ingest"   validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// OpenF1Config contains settings for the upstream session data API.
type OpenF1Config struct {
	BaseURL        string  `mapstructure:"base_url"         validate:"required,url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"  validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries"      validate:"gte=0"`
	RateLimitDelay float64 `mapstructure:"rate_limit_delay" validate:"gte=0"`
}

// IngestConfig contains settings for background season ingestion.
type IngestConfig struct {
	// WorkerCount is the number of concurrent ingest workers. Each worker
	// owns at most one season at a time, preserving the single-writer fold.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
}
