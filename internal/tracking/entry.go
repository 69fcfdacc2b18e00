// Package tracking implements the durable per-document record of send and
// follow-up history. The full collection persists as a single JSON container
// replaced atomically on every mutation, so readers never observe a
// partially written entry.
package tracking

import (
	"time"

	"github.com/signetlabs/chase/pkg/signing"
)

// Status is the follow-up lifecycle state of a tracked document.
type Status string

// Entry statuses. Completed is terminal; completed entries are never mutated.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Entry is the durable record of one sent document. Exactly one entry is
// created per successful send; a second send of the same logical document
// creates a new, independent entry under its own provider document ID.
type Entry struct {
	DocumentID     string              `json:"document_id"`
	DocumentName   string              `json:"document_name"`
	Recipients     []signing.Recipient `json:"recipients"`
	SentAt         time.Time           `json:"sent_at"`
	LastFollowupAt *time.Time          `json:"last_followup_at,omitempty"`
	FollowupCount  int                 `json:"followup_count"`
	Status         Status              `json:"status"`
}

// LastActivity returns the later of the send and last follow-up instants.
// A follow-up never precedes the send, so LastFollowupAt wins when set.
func (e *Entry) LastActivity() time.Time {
	if e.LastFollowupAt != nil {
		return *e.LastFollowupAt
	}
	return e.SentAt
}

// Due reports whether the entry is eligible for follow-up action: still
// pending, with at least threshold elapsed since its last activity.
func (e *Entry) Due(now time.Time, threshold time.Duration) bool {
	return e.Status == StatusPending && now.Sub(e.LastActivity()) >= threshold
}

// DaysPending returns whole days elapsed since the document was sent.
func (e *Entry) DaysPending(now time.Time) int {
	return int(now.Sub(e.SentAt).Hours() / 24)
}

// Stats summarizes the tracking store contents.
type Stats struct {
	Total          int `json:"total_documents"`
	Pending        int `json:"pending"`
	Completed      int `json:"completed"`
	TotalFollowups int `json:"total_followups_sent"`
}
