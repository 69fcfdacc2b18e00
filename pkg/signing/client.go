package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// maxResponseSize limits provider response bodies.
const maxResponseSize = 4 * 1024 * 1024

// System defines the provider operations the pipelines depend on.
type System interface {
	Upload(ctx context.Context, name string, document []byte, recipients []Recipient) (*Document, error)
	Details(ctx context.Context, documentID string) (*Details, error)
	WaitReady(ctx context.Context, documentID string) (*Details, error)
	CreateFields(ctx context.Context, documentID string, fields []Field) error
	Send(ctx context.Context, documentID, message string) error
}

// Client is an HTTP client for the e-signature provider API.
type Client struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a provider client from a finalized Config.
func New(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger.With("system", "signing"),
	}
}

// Link returns the reviewer-facing URL for a document.
func (c *Client) Link(documentID string) string {
	return c.cfg.DocumentLink(documentID)
}

// Upload creates a provider document from PDF bytes and a recipient list.
// The provider processes uploads asynchronously; use WaitReady before
// operating on the returned document.
func (c *Client) Upload(ctx context.Context, name string, document []byte, recipients []Recipient) (*Document, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	meta, err := json.Marshal(map[string]any{
		"name":       name,
		"recipients": recipients,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode metadata: %w", ErrUpload, err)
	}
	if err := form.WriteField("data", string(meta)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	part, err := form.CreateFormFile("file", name+".pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if _, err := part.Write(document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	req.Header.Set("Authorization", "API-Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer resp.Body.Close()

	// Upload success is exactly 201; any other status is a failure.
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, readBody(resp.Body))
	}

	var doc Document
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUpload, err)
	}

	c.logger.Info("document uploaded", "document_id", doc.ID, "name", name)
	return &doc, nil
}

// Details fetches the full document view, including per-recipient state.
func (c *Client) Details(ctx context.Context, documentID string) (*Details, error) {
	url := fmt.Sprintf("%s/%s/details", c.cfg.BaseURL, documentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatusCheck, err)
	}
	req.Header.Set("Authorization", "API-Key "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatusCheck, err)
	}
	defer resp.Body.Close()

	// 409 means the upload is still processing asynchronously.
	if resp.StatusCode == http.StatusConflict {
		return nil, fmt.Errorf("%w: %s still processing", ErrNotReady, documentID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrStatusCheck, resp.StatusCode, readBody(resp.Body))
	}

	var details Details
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&details); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrStatusCheck, err)
	}

	return &details, nil
}

// WaitReady polls Details until the document reaches draft status or the
// configured poll timeout elapses. Statuses other than uploaded/processing/
// draft end the wait immediately.
func (c *Client) WaitReady(ctx context.Context, documentID string) (*Details, error) {
	deadline := time.Now().Add(c.cfg.PollTimeoutDuration())

	for {
		details, err := c.Details(ctx, documentID)
		switch {
		case err != nil && !isNotReady(err):
			return nil, err
		case err == nil && details.Status == StatusDraft:
			return details, nil
		case err == nil && details.Status != StatusUploaded && details.Status != StatusProcessing:
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, details.Status)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s not draft after %s", ErrNotReady, documentID, c.cfg.PollTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollIntervalDuration()):
		}
	}
}

// CreateFields places interactive fields on a draft document.
func (c *Client) CreateFields(ctx context.Context, documentID string, fields []Field) error {
	url := fmt.Sprintf("%s/%s/fields", c.cfg.BaseURL, documentID)

	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFieldCreation, err)
	}

	resp, err := c.postJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFieldCreation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: status %d: %s", ErrFieldCreation, resp.StatusCode, readBody(resp.Body))
	}

	c.logger.Info("fields created", "document_id", documentID, "count", len(fields))
	return nil
}

// Send dispatches a draft document to its recipients.
func (c *Client) Send(ctx context.Context, documentID, message string) error {
	url := fmt.Sprintf("%s/%s/send", c.cfg.BaseURL, documentID)

	payload, err := json.Marshal(map[string]any{
		"message": message,
		"silent":  false,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	resp, err := c.postJSON(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrSend, resp.StatusCode, readBody(resp.Body))
	}

	c.logger.Info("document sent", "document_id", documentID)
	return nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "API-Key "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func isNotReady(err error) bool {
	return errors.Is(err, ErrNotReady)
}

func readBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(data)
}
