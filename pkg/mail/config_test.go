package mail_test

import (
	"testing"
	"time"

	"github.com/signetlabs/chase/pkg/mail"
)

func validConfig() *mail.Config {
	return &mail.Config{
		Username: "notify@example.com",
		Password: "app-password",
	}
}

func TestFinalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Host != "smtp.gmail.com" || cfg.Port != 587 {
		t.Errorf("host:port = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.From != cfg.Username {
		t.Errorf("From = %q, want username fallback", cfg.From)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.BackoffBaseDuration() != time.Second {
		t.Errorf("BackoffBase = %v, want 1s", cfg.BackoffBaseDuration())
	}
	if cfg.Retry.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", cfg.Retry.BackoffMultiplier)
	}
	if cfg.MaxBackoffDuration() != 30*time.Second {
		t.Errorf("MaxBackoff = %v, want 30s", cfg.MaxBackoffDuration())
	}
}

func TestFinalizeRequiresCredentials(t *testing.T) {
	cfg := &mail.Config{Username: "notify@example.com"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() without password expected error")
	}

	cfg = &mail.Config{Password: "secret"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() without username expected error")
	}
}

func TestFinalizeRejectsBadDurations(t *testing.T) {
	cfg := validConfig()
	cfg.Retry.BackoffBase = "soon"
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() with invalid backoff_base expected error")
	}
}

func TestMerge(t *testing.T) {
	base := validConfig()
	base.Host = "smtp.base.example.com"

	overlay := &mail.Config{
		Host: "smtp.prod.example.com",
		Retry: mail.Retry{
			MaxAttempts: 5,
		},
	}
	base.Merge(overlay)

	if base.Host != "smtp.prod.example.com" {
		t.Errorf("Host = %q", base.Host)
	}
	if base.Username != "notify@example.com" {
		t.Errorf("Username = %q, overlay must not clear fields", base.Username)
	}
	if base.Retry.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", base.Retry.MaxAttempts)
	}
}
