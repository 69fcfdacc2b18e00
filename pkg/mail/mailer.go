package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// ErrSendFailed wraps delivery failures after all retry attempts.
var ErrSendFailed = errors.New("email send failed")

// Message is one outbound email.
type Message struct {
	To       []string
	CC       []string
	Subject  string
	HTMLBody string
}

// System defines the email operations follow-up processing depends on.
type System interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends email over SMTP with geometric-backoff retry. Each attempt
// dials a fresh connection so a stale session never poisons the retry.
type Mailer struct {
	cfg    *Config
	logger *slog.Logger
}

// NewMailer creates a Mailer from a finalized Config.
func NewMailer(cfg *Config, logger *slog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: logger.With("system", "mail"),
	}
}

// Send delivers msg, retrying transient failures up to the configured
// attempt limit. Context cancellation aborts between attempts.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrSendFailed)
	}

	backoff := m.cfg.BackoffBaseDuration()
	var lastErr error

	for attempt := 1; attempt <= m.cfg.Retry.MaxAttempts; attempt++ {
		lastErr = m.send(ctx, msg)
		if lastErr == nil {
			m.logger.Info(
				"email sent",
				"to", msg.To,
				"subject", msg.Subject,
				"attempt", attempt,
			)
			return nil
		}

		if attempt == m.cfg.Retry.MaxAttempts {
			break
		}

		m.logger.Warn(
			"email send failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * m.cfg.Retry.BackoffMultiplier)
		if limit := m.cfg.MaxBackoffDuration(); backoff > limit {
			backoff = limit
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrSendFailed, m.cfg.Retry.MaxAttempts, lastErr)
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	message := gomail.NewMsg()
	if err := message.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := message.To(msg.To...); err != nil {
		return fmt.Errorf("to addresses: %w", err)
	}
	if len(msg.CC) > 0 {
		if err := message.Cc(msg.CC...); err != nil {
			return fmt.Errorf("cc addresses: %w", err)
		}
	}
	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	client, err := gomail.NewClient(
		m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, message)
}
