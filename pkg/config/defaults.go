package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultFormat         = "auto"
	DefaultOutput         = "table"
	DefaultLimit          = 50
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvFormat = "LOGSIFT_FORMAT"
	EnvOutput = "LOGSIFT_OUTPUT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Format: DefaultFormat,
		Output: DefaultOutput,
		Limit:  DefaultLimit,
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
}
