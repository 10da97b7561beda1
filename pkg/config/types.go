// Package config provides configuration loading and validation for logsift.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML. Everything is
// optional; flags override config values, which override defaults.
type Config struct {
	// Format is the default format hint (nginx, apache, json, syslog,
	// python, docker, auto).
	Format string `yaml:"format"`

	// Output is the default output mode (table, json).
	Output string `yaml:"output"`

	// Limit is the default number of entries shown in table output.
	Limit int `yaml:"limit"`

	// Formats are user-defined grammars, matched after the builtins in
	// declaration order.
	Formats []FormatConfig `yaml:"formats,omitempty"`

	// Webhooks receive the statistics report after a stats run.
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// FormatConfig defines one user-supplied grammar.
type FormatConfig struct {
	// Name identifies the grammar; must not shadow a reserved name.
	Name string `yaml:"name"`

	// Pattern is a regex with named capture groups. Groups named timestamp,
	// level, message, service, module, and host populate entry fields;
	// everything else lands in the entry's extra map.
	Pattern string `yaml:"pattern"`

	// compiledPattern is populated during validation.
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled pattern.
func (f *FormatConfig) CompiledPattern() *regexp.Regexp {
	return f.compiledPattern
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnErrors fires only when error-level entries were
	// parsed (default).
	WebhookTriggerOnErrors WebhookTrigger = "on_errors"
	// WebhookTriggerAlways fires after every stats run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for statistics reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires. Defaults to "on_errors".
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}
