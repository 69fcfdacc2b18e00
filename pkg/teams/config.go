// Package teams posts follow-up notices to a Microsoft Teams incoming
// webhook as Adaptive Cards.
package teams

import (
	"fmt"
	"os"
	"time"
)

// Config holds Teams webhook parameters.
type Config struct {
	WebhookURL string `toml:"webhook_url"`
	Timeout    string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	WebhookURL string
	Timeout    string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.WebhookURL != "" {
		c.WebhookURL = overlay.WebhookURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// Enabled reports whether a webhook URL is configured. Notifications are
// optional; an empty URL disables them without failing startup.
func (c *Config) Enabled() bool {
	return c.WebhookURL != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.WebhookURL != "" {
		if v := os.Getenv(env.WebhookURL); v != "" {
			c.WebhookURL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
