// Package mail sends follow-up email over authenticated SMTP with bounded
// retry on transient failures.
package mail

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds SMTP connection parameters and retry behavior.
type Config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
	Retry    Retry  `toml:"retry"`
}

// Retry bounds the send retry loop. Backoff grows geometrically from
// BackoffBase by BackoffMultiplier, capped at MaxBackoff.
type Retry struct {
	MaxAttempts       int     `toml:"max_attempts"`
	BackoffBase       string  `toml:"backoff_base"`
	BackoffMultiplier float64 `toml:"backoff_multiplier"`
	MaxBackoff        string  `toml:"max_backoff"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
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
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.FromName != "" {
		c.FromName = overlay.FromName
	}
	if overlay.Retry.MaxAttempts != 0 {
		c.Retry.MaxAttempts = overlay.Retry.MaxAttempts
	}
	if overlay.Retry.BackoffBase != "" {
		c.Retry.BackoffBase = overlay.Retry.BackoffBase
	}
	if overlay.Retry.BackoffMultiplier != 0 {
		c.Retry.BackoffMultiplier = overlay.Retry.BackoffMultiplier
	}
	if overlay.Retry.MaxBackoff != "" {
		c.Retry.MaxBackoff = overlay.Retry.MaxBackoff
	}
}

// BackoffBaseDuration returns Retry.BackoffBase as a time.Duration.
func (c *Config) BackoffBaseDuration() time.Duration {
	d, _ := time.ParseDuration(c.Retry.BackoffBase)
	return d
}

// MaxBackoffDuration returns Retry.MaxBackoff as a time.Duration.
func (c *Config) MaxBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.Retry.MaxBackoff)
	return d
}

func (c *Config) loadDefaults() {
	if c.Host == "" {
		c.Host = "smtp.gmail.com"
	}
	if c.Port == 0 {
		c.Port = 587
	}
	if c.FromName == "" {
		c.FromName = "Document Dispatch"
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BackoffBase == "" {
		c.Retry.BackoffBase = "1s"
	}
	if c.Retry.BackoffMultiplier == 0 {
		c.Retry.BackoffMultiplier = 2.0
	}
	if c.Retry.MaxBackoff == "" {
		c.Retry.MaxBackoff = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Host != "" {
		if v := os.Getenv(env.Host); v != "" {
			c.Host = v
		}
	}
	if env.Port != "" {
		if v := os.Getenv(env.Port); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				c.Port = port
			}
		}
	}
	if env.Username != "" {
		if v := os.Getenv(env.Username); v != "" {
			c.Username = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.From != "" {
		if v := os.Getenv(env.From); v != "" {
			c.From = v
		}
	}
	if env.FromName != "" {
		if v := os.Getenv(env.FromName); v != "" {
			c.FromName = v
		}
	}
}

func (c *Config) validate() error {
	if c.Host == "" {
		return fmt.Errorf("host required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Username == "" {
		return fmt.Errorf("username required")
	}
	if c.Password == "" {
		return fmt.Errorf("password required")
	}
	if c.From == "" {
		c.From = c.Username
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}
	if _, err := time.ParseDuration(c.Retry.BackoffBase); err != nil {
		return fmt.Errorf("invalid retry backoff_base: %w", err)
	}
	if _, err := time.ParseDuration(c.Retry.MaxBackoff); err != nil {
		return fmt.Errorf("invalid retry max_backoff: %w", err)
	}
	return nil
}
