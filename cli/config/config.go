package config

import (
	"fmt"
	"time"
)

// Config represents a poliver.yaml configuration file.
// All values are optional and act as defaults for poliver flags.
// CLI flags always override config values.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Adapter  AdapterConfig  `yaml:"adapter"`
	Verify   VerifyConfig   `yaml:"verify"`
}

// APIConfig holds service connection defaults from the config file.
type APIConfig struct {
	BaseURL string   `yaml:"base_url"`
	Token   string   `yaml:"token"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// CheckoutConfig holds pending-checkout store defaults from the config file.
type CheckoutConfig struct {
	// Store selects the slot backend: file (default) or redis.
	Store      string `yaml:"store"`
	Path       string `yaml:"path"`
	RedisURL   string `yaml:"redis_url"`
	SuccessURL string `yaml:"success_url"`
	CancelURL  string `yaml:"cancel_url"`
}

// AdapterConfig holds downstream notification defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// VerifyConfig holds analysis defaults from the config file.
type VerifyConfig struct {
	Mode string `yaml:"mode"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
