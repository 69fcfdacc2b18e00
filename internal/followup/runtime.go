package followup

import (
	"context"
	"log/slog"
	"time"

	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/mail"
	"github.com/signetlabs/chase/pkg/signing"
	"github.com/signetlabs/chase/pkg/teams"
)

// Tracker provides the store operations a follow-up run needs.
type Tracker interface {
	List(status tracking.Status) ([]tracking.Entry, error)
	RecordFollowup(documentID string, at time.Time) error
	MarkCompleted(documentID string) error
}

// StatusSource checks document signature state with the provider.
type StatusSource interface {
	Details(ctx context.Context, documentID string) (*signing.Details, error)
}

// ReminderDrafter writes the reminder email for one recipient.
type ReminderDrafter interface {
	Draft(ctx context.Context, req agents.DraftRequest) (*agents.DraftedEmail, error)
}

// Runtime bundles the dependencies a follow-up run draws from.
type Runtime struct {
	Tracker   Tracker
	Signing   StatusSource
	Drafter   ReminderDrafter
	Mailer    mail.System
	Notifier  teams.System
	Logger    *slog.Logger
	Threshold time.Duration

	// Link resolves a provider document ID to its reviewer-facing URL.
	// Optional; nil leaves notices without a link.
	Link func(documentID string) string
}

func (rt *Runtime) link(documentID string) string {
	if rt.Link == nil {
		return ""
	}
	return rt.Link(documentID)
}
