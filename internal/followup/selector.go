// Package followup implements the daily chase run: check every pending
// document's signature state with the provider, close out the signed ones,
// and remind the rest once they have waited long enough.
package followup

import (
	"sort"
	"time"

	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/signing"
)

// Action is what a follow-up run does with one due document.
type Action string

const (
	// ActionSendFollowup means the document is still unsigned and its
	// outstanding recipients get a reminder.
	ActionSendFollowup Action = "send-followup"

	// ActionMarkCompleted means the provider reports the document signed
	// and the tracking entry is closed.
	ActionMarkCompleted Action = "mark-completed"
)

// Decision pairs a due entry with its resolved action. For follow-ups,
// Unsigned lists the recipients who have not completed yet, in provider
// order.
type Decision struct {
	Entry    tracking.Entry
	Action   Action
	Unsigned []signing.RecipientState
}

// Select resolves actions for pending entries given their provider details.
// Entries without details (the provider check failed) are omitted; they
// stay pending and the next run retries them. A fully signed document is
// closed out no matter how recently it was sent; the threshold gates only
// reminders. Decisions come back ordered by send time ascending so the
// longest-waiting documents act first.
func Select(entries []tracking.Entry, details map[string]*signing.Details, now time.Time, threshold time.Duration) []Decision {
	var decisions []Decision

	for _, entry := range entries {
		if entry.Status != tracking.StatusPending {
			continue
		}

		d, ok := details[entry.DocumentID]
		if !ok || d == nil {
			continue
		}

		if d.Signed() {
			decisions = append(decisions, Decision{Entry: entry, Action: ActionMarkCompleted})
			continue
		}

		if !entry.Due(now, threshold) {
			continue
		}

		decisions = append(decisions, Decision{
			Entry:    entry,
			Action:   ActionSendFollowup,
			Unsigned: unsigned(d),
		})
	}

	sort.SliceStable(decisions, func(i, j int) bool {
		return decisions[i].Entry.SentAt.Before(decisions[j].Entry.SentAt)
	})
	return decisions
}

func unsigned(d *signing.Details) []signing.RecipientState {
	var out []signing.RecipientState
	for _, r := range d.Recipients {
		if !r.HasCompleted {
			out = append(out, r)
		}
	}
	return out
}
