// Package agents wraps the language-model calls the pipelines depend on:
// recipient extraction from document text, signature layout analysis, and
// follow-up email drafting. Each call creates its own agent so concurrent
// pipeline runs never share client state.
package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/signetlabs/chase/pkg/formatting"
	"github.com/signetlabs/chase/pkg/signing"
)

// Extractor identifies document recipients from extracted text.
type Extractor struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewExtractor creates an Extractor using a finalized agent configuration.
func NewExtractor(cfg gaconfig.AgentConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		logger: logger.With("system", "agents"),
	}
}

// Recipients asks the model for the people named in the document text.
// Roles are left unassigned; the caller decides role distribution.
func (e *Extractor) Recipients(ctx context.Context, text string) ([]signing.Recipient, error) {
	a, err := agent.New(&e.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrExtractionFailed, err)
	}

	resp, err := a.Chat(ctx, fmt.Sprintf(recipientsPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("%w: chat call: %w", ErrExtractionFailed, err)
	}

	recipients, err := formatting.Parse[[]signing.Recipient](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", ErrExtractionFailed, err)
	}

	e.logger.Info("recipients extracted", "count", len(recipients))
	return recipients, nil
}
