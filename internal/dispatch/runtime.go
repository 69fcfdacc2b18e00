package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/pdf"
	"github.com/signetlabs/chase/pkg/signing"
)

// PDFProcessor handles local PDF operations.
type PDFProcessor interface {
	ExtractText(data []byte) (string, error)
	PageCount(data []byte) (int, error)
	StampAnchors(data []byte, anchors []pdf.Anchor) ([]byte, error)
}

// RecipientSource identifies recipients from document text.
type RecipientSource interface {
	Recipients(ctx context.Context, text string) ([]signing.Recipient, error)
}

// LayoutSource determines signature field placement from document text.
type LayoutSource interface {
	Analyze(ctx context.Context, text string, pageCount int) (*agents.PageLayout, error)
}

// Tracker records successfully sent documents.
type Tracker interface {
	Upsert(entry tracking.Entry) error
}

// Runtime bundles the dependencies pipeline steps draw from.
type Runtime struct {
	PDF     PDFProcessor
	Source  RecipientSource
	Analyst LayoutSource
	Signing signing.System
	Tracker Tracker
	Logger  *slog.Logger

	// Now is a seam for tests; nil means time.Now.
	Now func() time.Time
}

func (rt *Runtime) now() time.Time {
	if rt.Now != nil {
		return rt.Now()
	}
	return time.Now()
}
