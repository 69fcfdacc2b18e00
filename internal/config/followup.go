package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvFollowupThreshold   = "CHASE_FOLLOWUP_THRESHOLD"
	EnvFollowupDailyTime   = "CHASE_FOLLOWUP_DAILY_TIME"
	EnvFollowupTrackerPath = "CHASE_FOLLOWUP_TRACKER_PATH"
)

// FollowupConfig holds follow-up selection and scheduling parameters.
type FollowupConfig struct {
	// Threshold is the minimum time since last activity before a pending
	// document is due for follow-up.
	Threshold string `toml:"threshold"`

	// DailyTime is the local wall-clock time ("15:04") of the daily run.
	DailyTime string `toml:"daily_time"`

	// TrackerPath is the tracking store file location.
	TrackerPath string `toml:"tracker_path"`
}

// ThresholdDuration returns Threshold as a time.Duration.
func (c *FollowupConfig) ThresholdDuration() time.Duration {
	d, _ := time.ParseDuration(c.Threshold)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *FollowupConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *FollowupConfig) Merge(overlay *FollowupConfig) {
	if overlay.Threshold != "" {
		c.Threshold = overlay.Threshold
	}
	if overlay.DailyTime != "" {
		c.DailyTime = overlay.DailyTime
	}
	if overlay.TrackerPath != "" {
		c.TrackerPath = overlay.TrackerPath
	}
}

func (c *FollowupConfig) loadDefaults() {
	if c.Threshold == "" {
		c.Threshold = "24h"
	}
	if c.DailyTime == "" {
		c.DailyTime = "09:00"
	}
	if c.TrackerPath == "" {
		c.TrackerPath = "chase_tracking.json"
	}
}

func (c *FollowupConfig) loadEnv() {
	if v := os.Getenv(EnvFollowupThreshold); v != "" {
		c.Threshold = v
	}
	if v := os.Getenv(EnvFollowupDailyTime); v != "" {
		c.DailyTime = v
	}
	if v := os.Getenv(EnvFollowupTrackerPath); v != "" {
		c.TrackerPath = v
	}
}

func (c *FollowupConfig) validate() error {
	threshold, err := time.ParseDuration(c.Threshold)
	if err != nil {
		return fmt.Errorf("invalid threshold: %w", err)
	}
	if threshold <= 0 {
		return fmt.Errorf("threshold must be positive: %s", c.Threshold)
	}
	if _, err := time.Parse("15:04", c.DailyTime); err != nil {
		return fmt.Errorf("invalid daily_time %q: %w", c.DailyTime, err)
	}
	if c.TrackerPath == "" {
		return fmt.Errorf("tracker_path required")
	}
	return nil
}
