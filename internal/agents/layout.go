package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/signetlabs/chase/pkg/formatting"
)

// PageLayout describes where signature rows sit on a page, in PDF points
// with the origin at the bottom-left corner. Rows descend from FirstRowY
// by RowHeight per recipient.
type PageLayout struct {
	Page             int     `json:"page"`
	SignatureColumnX float64 `json:"signature_column_x"`
	FirstRowY        float64 `json:"first_row_y"`
	RowHeight        float64 `json:"row_height"`
}

// Analyst determines signature field placement from document text.
type Analyst struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// NewAnalyst creates an Analyst using a finalized agent configuration.
func NewAnalyst(cfg gaconfig.AgentConfig, logger *slog.Logger) *Analyst {
	return &Analyst{
		cfg:    cfg,
		logger: logger.With("system", "agents"),
	}
}

// Analyze asks the model for the signature section geometry of a document
// with pageCount pages. Out-of-range answers are clamped to the document.
func (an *Analyst) Analyze(ctx context.Context, text string, pageCount int) (*PageLayout, error) {
	a, err := agent.New(&an.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrLayoutFailed, err)
	}

	resp, err := a.Chat(ctx, fmt.Sprintf(layoutPrompt, pageCount, text))
	if err != nil {
		return nil, fmt.Errorf("%w: chat call: %w", ErrLayoutFailed, err)
	}

	layout, err := formatting.Parse[PageLayout](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", ErrLayoutFailed, err)
	}

	clampLayout(&layout, pageCount)

	an.logger.Info(
		"layout analyzed",
		"page", layout.Page,
		"first_row_y", layout.FirstRowY,
	)
	return &layout, nil
}

// clampLayout forces model output into usable bounds: a page inside the
// document and positive geometry on a letter-size canvas.
func clampLayout(l *PageLayout, pageCount int) {
	if l.Page < 1 || l.Page > pageCount {
		l.Page = pageCount
	}
	if l.SignatureColumnX <= 0 {
		l.SignatureColumnX = 350
	}
	if l.FirstRowY <= 0 {
		l.FirstRowY = 180
	}
	if l.RowHeight <= 0 {
		l.RowHeight = 60
	}
}
