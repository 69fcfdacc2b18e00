package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/pipeline"
)

// Result reports one send run: the accumulated state plus per-step outcomes.
type Result struct {
	RunID  string
	State  State
	Report *pipeline.Report
}

// Sent reports whether the document went out to its recipients.
func (r *Result) Sent() bool {
	return r.Report.Completed() && r.State.Sent
}

// Run executes the send pipeline for one document and records a tracking
// entry when the send completes. A validation gate closing is a clean stop,
// not an error; inspect Result.Report to distinguish the two.
func Run(ctx context.Context, rt *Runtime, documentName string, raw []byte) (*Result, error) {
	if documentName == "" {
		return nil, fmt.Errorf("document name required")
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("document content required")
	}

	p, err := build(rt)
	if err != nil {
		return nil, fmt.Errorf("assemble pipeline: %w", err)
	}

	runID := uuid.NewString()
	rt.Logger.Info("dispatch run started", "run_id", runID, "document", documentName)

	initial := State{DocumentName: documentName, RawInput: raw}
	state, report := p.Execute(ctx, initial)
	result := &Result{RunID: runID, State: state, Report: report}

	if !report.Completed() {
		return result, nil
	}

	// The document is already with its recipients; log the provider ID
	// before the tracker write so a persistence failure is recoverable
	// by hand.
	rt.Logger.Info(
		"document dispatched",
		"run_id", runID,
		"document_id", state.Document.ID,
		"document", documentName,
		"recipients", len(state.Recipients),
	)

	entry := tracking.Entry{
		DocumentID:   state.Document.ID,
		DocumentName: documentName,
		Recipients:   state.Recipients,
		SentAt:       rt.now(),
		Status:       tracking.StatusPending,
	}
	if err := rt.Tracker.Upsert(entry); err != nil {
		return result, fmt.Errorf("record sent document %s: %w", state.Document.ID, err)
	}

	return result, nil
}
