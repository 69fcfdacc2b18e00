package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/signetlabs/chase/pkg/formatting"
)

// DraftRequest describes the pending document a reminder is written about.
type DraftRequest struct {
	DocumentName  string
	RecipientName string
	Role          string
	SentAt        time.Time
	DaysPending   int
}

// DraftedEmail is the model's reminder text.
type DraftedEmail struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
}

// Drafter writes follow-up reminder emails.
type Drafter struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewDrafter creates a Drafter using a finalized agent configuration.
func NewDrafter(cfg gaconfig.AgentConfig, logger *slog.Logger) *Drafter {
	return &Drafter{
		cfg:    cfg,
		logger: logger.With("system", "agents"),
	}
}

// Draft asks the model for a reminder email about req.
func (d *Drafter) Draft(ctx context.Context, req DraftRequest) (*DraftedEmail, error) {
	a, err := agent.New(&d.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrDraftFailed, err)
	}

	prompt := fmt.Sprintf(
		draftPrompt,
		req.DocumentName,
		req.RecipientName,
		req.Role,
		req.SentAt.Format("January 2, 2006"),
		req.DaysPending,
	)

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: chat call: %w", ErrDraftFailed, err)
	}

	email, err := formatting.Parse[DraftedEmail](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", ErrDraftFailed, err)
	}

	if email.Subject == "" || email.BodyHTML == "" {
		return nil, fmt.Errorf("%w: empty subject or body", ErrDraftFailed)
	}

	d.logger.Info("reminder drafted", "document", req.DocumentName, "recipient", req.RecipientName)
	return &email, nil
}
