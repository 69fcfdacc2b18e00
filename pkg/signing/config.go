package signing

import (
	"fmt"
	"os"
	"time"
)

// Config holds e-signature provider connection parameters.
type Config struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	PollInterval string `toml:"poll_interval"`
	PollTimeout  string `toml:"poll_timeout"`
	DocumentURL  string `toml:"document_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL      string
	APIKey       string
	PollInterval string
	PollTimeout  string
	DocumentURL  string
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.PollTimeout != "" {
		c.PollTimeout = overlay.PollTimeout
	}
	if overlay.DocumentURL != "" {
		c.DocumentURL = overlay.DocumentURL
	}
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// PollTimeoutDuration returns PollTimeout as a time.Duration.
func (c *Config) PollTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollTimeout)
	return d
}

// DocumentLink returns the reviewer-facing URL for a document.
func (c *Config) DocumentLink(documentID string) string {
	return fmt.Sprintf("%s/%s", c.DocumentURL, documentID)
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.pandadoc.com/public/v1/documents"
	}
	if c.PollInterval == "" {
		c.PollInterval = "1s"
	}
	if c.PollTimeout == "" {
		c.PollTimeout = "30s"
	}
	if c.DocumentURL == "" {
		c.DocumentURL = "https://app.pandadoc.com/a/#/documents"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.PollInterval != "" {
		if v := os.Getenv(env.PollInterval); v != "" {
			c.PollInterval = v
		}
	}
	if env.PollTimeout != "" {
		if v := os.Getenv(env.PollTimeout); v != "" {
			c.PollTimeout = v
		}
	}
	if env.DocumentURL != "" {
		if v := os.Getenv(env.DocumentURL); v != "" {
			c.DocumentURL = v
		}
	}
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if _, err := time.ParseDuration(c.PollInterval); err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.PollTimeout); err != nil {
		return fmt.Errorf("invalid poll_timeout: %w", err)
	}
	return nil
}
