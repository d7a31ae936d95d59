package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Enrichment.BatchSize == 0 {
		cfg.Enrichment.BatchSize = 5
	}
	if cfg.Enrichment.IntervalMinutes == 0 {
		cfg.Enrichment.IntervalMinutes = 15
	}
	if cfg.Enrichment.LockTTLMinutes == 0 {
		cfg.Enrichment.LockTTLMinutes = 10
	}

	return &cfg, nil
}
