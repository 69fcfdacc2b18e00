// Package config loads service configuration from a base TOML file, an
// optional per-environment overlay, and environment variable overrides,
// finalizing every sub-config through the same defaults/env/validate phases.
package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/signetlabs/chase/pkg/mail"
	"github.com/signetlabs/chase/pkg/signing"
	"github.com/signetlabs/chase/pkg/teams"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvChaseEnv             = "CHASE_ENV"
	EnvChaseShutdownTimeout = "CHASE_SHUTDOWN_TIMEOUT"
	EnvChaseVersion         = "CHASE_VERSION"
)

var signingEnv = &signing.Env{
	BaseURL:      "CHASE_SIGNING_BASE_URL",
	APIKey:       "CHASE_SIGNING_API_KEY",
	PollInterval: "CHASE_SIGNING_POLL_INTERVAL",
	PollTimeout:  "CHASE_SIGNING_POLL_TIMEOUT",
	DocumentURL:  "CHASE_SIGNING_DOCUMENT_URL",
}

var smtpEnv = &mail.Env{
	Host:     "CHASE_SMTP_HOST",
	Port:     "CHASE_SMTP_PORT",
	Username: "CHASE_SMTP_USERNAME",
	Password: "CHASE_SMTP_PASSWORD",
	From:     "CHASE_SMTP_FROM",
	FromName: "CHASE_SMTP_FROM_NAME",
}

var teamsEnv = &teams.Env{
	WebhookURL: "CHASE_TEAMS_WEBHOOK_URL",
	Timeout:    "CHASE_TEAMS_TIMEOUT",
}

// Config is the root configuration for the chase service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Signing         signing.Config       `toml:"signing"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	SMTP            mail.Config          `toml:"smtp"`
	Teams           teams.Config         `toml:"teams"`
	Followup        FollowupConfig       `toml:"followup"`
	API             APIConfig            `toml:"api"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the CHASE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvChaseEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and
// environment variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Signing.Merge(&overlay.Signing)
	MergeAgent(&c.Agent, &overlay.Agent)
	c.SMTP.Merge(&overlay.SMTP)
	c.Teams.Merge(&overlay.Teams)
	c.Followup.Merge(&overlay.Followup)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Signing.Finalize(signingEnv); err != nil {
		return fmt.Errorf("signing: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.SMTP.Finalize(smtpEnv); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	if err := c.Teams.Finalize(teamsEnv); err != nil {
		return fmt.Errorf("teams: %w", err)
	}
	if err := c.Followup.Finalize(); err != nil {
		return fmt.Errorf("followup: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvChaseShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvChaseVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvChaseEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
