package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrWebhook wraps webhook delivery failures.
var ErrWebhook = errors.New("teams webhook failed")

// Notice describes one pending document for channel notification.
type Notice struct {
	DocumentName  string
	RecipientName string
	DaysPending   int
	DocumentLink  string
}

// System defines the notification operations follow-up processing depends on.
type System interface {
	Notify(ctx context.Context, notice Notice) error
}

// Notifier posts Adaptive Cards to a Teams incoming webhook.
type Notifier struct {
	cfg    *Config
	http   *http.Client
	logger *slog.Logger
}

// NewNotifier creates a Notifier from a finalized Config.
func NewNotifier(cfg *Config, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "teams"),
	}
}

// Notify posts a card describing the pending document. When no webhook is
// configured the notice is dropped silently.
func (n *Notifier) Notify(ctx context.Context, notice Notice) error {
	if !n.cfg.Enabled() {
		return nil
	}

	payload, err := json.Marshal(card(notice))
	if err != nil {
		return fmt.Errorf("%w: encode card: %w", ErrWebhook, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWebhook, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWebhook, err)
	}
	defer resp.Body.Close()

	// Webhook connectors answer 200; Power Automate workflows answer 202.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrWebhook, resp.StatusCode, body)
	}

	n.logger.Info("notice posted", "document", notice.DocumentName, "recipient", notice.RecipientName)
	return nil
}

// card builds the message envelope Teams expects: a single Adaptive Card
// attachment with a headline, facts, and an open-document action.
func card(notice Notice) map[string]any {
	body := []map[string]any{
		{
			"type":   "TextBlock",
			"size":   "Medium",
			"weight": "Bolder",
			"text":   "Signature follow-up sent",
		},
		{
			"type": "FactSet",
			"facts": []map[string]string{
				{"title": "Document", "value": notice.DocumentName},
				{"title": "Waiting on", "value": notice.RecipientName},
				{"title": "Days pending", "value": fmt.Sprintf("%d", notice.DaysPending)},
			},
		},
	}

	content := map[string]any{
		"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
		"type":    "AdaptiveCard",
		"version": "1.4",
		"body":    body,
	}
	if notice.DocumentLink != "" {
		content["actions"] = []map[string]any{
			{
				"type":  "Action.OpenUrl",
				"title": "Open document",
				"url":   notice.DocumentLink,
			},
		}
	}

	return map[string]any{
		"type": "message",
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"content":     content,
			},
		},
	}
}
