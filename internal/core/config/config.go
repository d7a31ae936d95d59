package config

import (
	"github.com/vietddude/enricher/internal/infra/apify"
	redisclient "github.com/vietddude/enricher/internal/infra/redis"
	"github.com/vietddude/enricher/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server     ServerConfig       `yaml:"server"`
	Database   postgres.Config    `yaml:"database"`
	Redis      redisclient.Config `yaml:"redis"`
	Apify      apify.Config       `yaml:"apify"`
	Enrichment EnrichmentConfig   `yaml:"enrichment"`
	Logging    LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings for daemon mode.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// EnrichmentConfig holds batch-job settings.
type EnrichmentConfig struct {
	BatchSize       int `yaml:"batch_size"`
	IntervalMinutes int `yaml:"interval_minutes"` // daemon mode only
	LockTTLMinutes  int `yaml:"lock_ttl_minutes"` // run lock, when redis is configured
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
