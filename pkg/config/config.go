package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/logsift/logsift/pkg/logparser"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config file at path, or returns validated defaults
// (with environment overrides applied) when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnvironmentOverrides()
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("validating config: %w", err)
		}
		return cfg, nil
	}
	return Load(ctx, path)
}

// Validate checks a configuration for errors and compiles format patterns.
func Validate(cfg *Config) error {
	if _, err := logparser.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	if cfg.Output != "table" && cfg.Output != "json" {
		return fmt.Errorf("output: invalid mode %q (use table or json)", cfg.Output)
	}

	if cfg.Limit <= 0 {
		return errors.New("limit: must be positive")
	}

	for i := range cfg.Formats {
		if err := validateFormat(&cfg.Formats[i]); err != nil {
			return fmt.Errorf("formats[%d] (%s): %w", i, cfg.Formats[i].Name, err)
		}
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

// Registry builds a format registry holding the builtin grammars followed by
// the user-defined ones. Call only after Validate.
func (c *Config) Registry() (*logparser.Registry, error) {
	registry := logparser.NewRegistry()
	for i := range c.Formats {
		f := &c.Formats[i]
		if err := registry.Register(logparser.Format(f.Name), f.CompiledPattern()); err != nil {
			return nil, fmt.Errorf("registering format %q: %w", f.Name, err)
		}
	}
	return registry, nil
}

func validateFormat(f *FormatConfig) error {
	if f.Name == "" {
		return errors.New("name is required")
	}
	if f.Pattern == "" {
		return errors.New("pattern is required")
	}

	re, err := regexp.Compile(f.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	named := 0
	for _, n := range re.SubexpNames() {
		if n != "" {
			named++
		}
	}
	if named == 0 {
		return errors.New("pattern must have at least one named capture group")
	}

	f.compiledPattern = re
	return nil
}

func validateWebhook(w *WebhookConfig) error {
	if w.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(w.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url scheme %q (use http or https)", u.Scheme)
	}

	switch w.Trigger {
	case "", WebhookTriggerOnErrors, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (use on_errors, always, or never)", w.Trigger)
	}
	if w.Trigger == "" {
		w.Trigger = WebhookTriggerOnErrors
	}

	if w.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if w.Timeout == 0 {
		w.Timeout = DefaultWebhookTimeout
	}

	return nil
}
