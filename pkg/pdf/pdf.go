// Package pdf provides the PDF operations the dispatch pipeline needs:
// plain-text extraction for agent analysis, page counting, and stamping
// visible signature anchor labels onto the page.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Domain errors for PDF processing.
var (
	ErrExtract = errors.New("text extraction failed")
	ErrStamp   = errors.New("anchor stamping failed")
)

// Anchor is a text label stamped at an absolute position on a page.
// Coordinates are in points with the origin at the bottom-left corner.
type Anchor struct {
	Page int
	X    float64
	Y    float64
	Text string
}

// Service implements PDF processing over in-memory documents.
type Service struct {
	logger *slog.Logger
}

// NewService creates a PDF service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger.With("system", "pdf")}
}

// ExtractText returns the plain text content of every parseable page,
// separated by blank lines. Pages that fail to parse are skipped; a
// document yielding no text at all is an error.
func (s *Service) ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}

	var text strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			s.logger.Warn("page extraction failed", "page", i, "error", err)
			continue
		}
		if content == "" {
			continue
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(content)
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text content in %d pages", ErrExtract, pages)
	}
	return text.String(), nil
}

// PageCount returns the number of pages in the document.
func (s *Service) PageCount(data []byte) (int, error) {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return count, nil
}

// StampAnchors stamps each anchor label onto its page and returns the
// modified document. Anchors are applied one at a time since each carries
// its own position.
func (s *Service) StampAnchors(data []byte, anchors []Anchor) ([]byte, error) {
	current := data

	for _, anchor := range anchors {
		desc := fmt.Sprintf(
			"fontname:Helvetica, points:10, scale:1 abs, pos:bl, off:%.0f %.0f, rot:0, op:1",
			anchor.X, anchor.Y,
		)
		wm, err := api.TextWatermark(anchor.Text, desc, true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrStamp, anchor.Text, err)
		}

		var out bytes.Buffer
		pages := []string{fmt.Sprintf("%d", anchor.Page)}
		if err := api.AddWatermarks(bytes.NewReader(current), &out, pages, wm, nil); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrStamp, anchor.Text, err)
		}
		current = out.Bytes()
	}

	s.logger.Info("anchors stamped", "count", len(anchors))
	return current, nil
}

// Validate reports whether data is a structurally readable PDF.
func (s *Service) Validate(data []byte) error {
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		return fmt.Errorf("invalid pdf: %w", err)
	}
	return nil
}
