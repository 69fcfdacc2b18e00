package followup

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/signetlabs/chase/internal/agents"
	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/mail"
	"github.com/signetlabs/chase/pkg/signing"
	"github.com/signetlabs/chase/pkg/teams"
)

// Outcome reports what one follow-up run did with one due document.
type Outcome struct {
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	Action       Action `json:"action"`
	Reminders    int    `json:"reminders_sent"`
	Error        string `json:"error,omitempty"`
}

// Summary reports one complete follow-up run.
type Summary struct {
	RunID    string    `json:"run_id"`
	Pending  int       `json:"pending"`
	Outcomes []Outcome `json:"outcomes"`
}

// Run performs one follow-up pass at the given instant: load every pending
// entry, check each with the provider concurrently, close out signed
// documents, and remind outstanding recipients whose wait has crossed the
// threshold. One document's failure never stops the others; per-document
// errors land in the summary.
func Run(ctx context.Context, rt *Runtime, now time.Time) (*Summary, error) {
	pending, err := rt.Tracker.List(tracking.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("load pending documents: %w", err)
	}

	summary := &Summary{RunID: uuid.NewString(), Pending: len(pending)}
	if len(pending) == 0 {
		rt.Logger.Info("no documents pending follow-up", "run_id", summary.RunID)
		return summary, nil
	}

	rt.Logger.Info("follow-up run started", "run_id", summary.RunID, "pending", len(pending))

	details := checkStatuses(ctx, rt, pending)
	decisions := Select(pending, details, now, rt.Threshold)

	for _, decision := range decisions {
		outcome := rt.apply(ctx, decision, now)
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	rt.Logger.Info(
		"follow-up run finished",
		"run_id", summary.RunID,
		"pending", summary.Pending,
		"acted_on", len(summary.Outcomes),
	)
	return summary, nil
}

// checkStatuses fetches provider details for every pending entry with
// bounded concurrency. A failed check logs and leaves the entry out of the
// map so the next run retries it.
func checkStatuses(ctx context.Context, rt *Runtime, pending []tracking.Entry) map[string]*signing.Details {
	details := make(map[string]*signing.Details, len(pending))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(pending)))

	for _, entry := range pending {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			d, err := rt.Signing.Details(gctx, entry.DocumentID)
			if err != nil {
				rt.Logger.Warn(
					"status check failed",
					"document_id", entry.DocumentID,
					"error", err,
				)
				return nil
			}

			mu.Lock()
			details[entry.DocumentID] = d
			mu.Unlock()
			return nil
		})
	}

	// Workers only return context errors; a cancelled run proceeds with
	// whatever statuses it gathered.
	_ = g.Wait()
	return details
}

// apply executes one decision and reports the outcome.
func (rt *Runtime) apply(ctx context.Context, decision Decision, now time.Time) Outcome {
	outcome := Outcome{
		DocumentID:   decision.Entry.DocumentID,
		DocumentName: decision.Entry.DocumentName,
		Action:       decision.Action,
	}

	switch decision.Action {
	case ActionMarkCompleted:
		if err := rt.Tracker.MarkCompleted(decision.Entry.DocumentID); err != nil {
			outcome.Error = err.Error()
		}
	case ActionSendFollowup:
		sent, err := rt.remind(ctx, decision, now)
		outcome.Reminders = sent
		if err != nil {
			outcome.Error = err.Error()
		}
	}

	return outcome
}

// remind drafts and emails every outstanding recipient, posts a channel
// notice, and records the follow-up when at least one reminder went out.
// The notice is best effort; a webhook failure never blocks the emails.
func (rt *Runtime) remind(ctx context.Context, decision Decision, now time.Time) (int, error) {
	entry := decision.Entry
	days := entry.DaysPending(now)

	var sent int
	var errs []string

	for _, recipient := range decision.Unsigned {
		draft, err := rt.Drafter.Draft(ctx, agents.DraftRequest{
			DocumentName:  entry.DocumentName,
			RecipientName: recipient.DisplayName(),
			Role:          recipient.Role,
			SentAt:        entry.SentAt,
			DaysPending:   days,
		})
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}

		msg := mail.Message{
			To:       []string{recipient.Email},
			CC:       ccFor(entry.Recipients, recipient.Email),
			Subject:  draft.Subject,
			HTMLBody: draft.BodyHTML,
		}
		if err := rt.Mailer.Send(ctx, msg); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		sent++
	}

	if sent > 0 {
		notice := teams.Notice{
			DocumentName:  entry.DocumentName,
			RecipientName: waitingOn(decision.Unsigned),
			DaysPending:   days,
			DocumentLink:  rt.link(entry.DocumentID),
		}
		if err := rt.Notifier.Notify(ctx, notice); err != nil {
			rt.Logger.Warn(
				"channel notice failed",
				"document_id", entry.DocumentID,
				"error", err,
			)
		}

		if err := rt.Tracker.RecordFollowup(entry.DocumentID, now); err != nil {
			errs = append(errs, fmt.Sprintf("record follow-up: %s", err))
		}
	}

	if len(errs) > 0 {
		return sent, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return sent, nil
}

// ccFor copies everyone else on the document, signed or not, so the whole
// party sees the reminder went out.
func ccFor(recipients []signing.Recipient, addressee string) []string {
	var cc []string
	for _, r := range recipients {
		if r.Email != addressee {
			cc = append(cc, r.Email)
		}
	}
	return cc
}

func waitingOn(unsigned []signing.RecipientState) string {
	names := make([]string, len(unsigned))
	for i, r := range unsigned {
		names[i] = r.DisplayName()
	}
	return strings.Join(names, ", ")
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
