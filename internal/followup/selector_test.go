package followup_test

import (
	"testing"
	"time"

	"github.com/signetlabs/chase/internal/followup"
	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/signing"
)

var (
	selNow       = time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	selThreshold = 24 * time.Hour
)

func pendingEntry(id string, sentAt time.Time) tracking.Entry {
	return tracking.Entry{
		DocumentID:   id,
		DocumentName: "Agreement " + id,
		Recipients: []signing.Recipient{
			{Email: "sam@example.com", FirstName: "Sam", Role: signing.RoleSigner},
			{Email: "robin@example.com", FirstName: "Robin", Role: signing.RoleApprover},
		},
		SentAt: sentAt,
		Status: tracking.StatusPending,
	}
}

func unsignedDetails(id string) *signing.Details {
	return &signing.Details{
		ID:     id,
		Status: signing.StatusSent,
		Recipients: []signing.RecipientState{
			{Email: "sam@example.com", FirstName: "Sam", HasCompleted: true},
			{Email: "robin@example.com", FirstName: "Robin", HasCompleted: false},
		},
	}
}

func signedDetails(id string) *signing.Details {
	return &signing.Details{
		ID:     id,
		Status: signing.StatusCompleted,
		Recipients: []signing.RecipientState{
			{Email: "sam@example.com", FirstName: "Sam", HasCompleted: true},
		},
	}
}

func TestSelectUnsignedGetsFollowup(t *testing.T) {
	entries := []tracking.Entry{pendingEntry("doc-1", selNow.Add(-48*time.Hour))}
	details := map[string]*signing.Details{"doc-1": unsignedDetails("doc-1")}

	decisions := followup.Select(entries, details, selNow, selThreshold)
	if len(decisions) != 1 {
		t.Fatalf("Select() = %d decisions, want 1", len(decisions))
	}
	d := decisions[0]
	if d.Action != followup.ActionSendFollowup {
		t.Errorf("Action = %q, want send-followup", d.Action)
	}
	if len(d.Unsigned) != 1 || d.Unsigned[0].Email != "robin@example.com" {
		t.Errorf("Unsigned = %v, want only robin", d.Unsigned)
	}
}

func TestSelectSignedGetsCompleted(t *testing.T) {
	entries := []tracking.Entry{pendingEntry("doc-1", selNow.Add(-48*time.Hour))}
	details := map[string]*signing.Details{"doc-1": signedDetails("doc-1")}

	decisions := followup.Select(entries, details, selNow, selThreshold)
	if len(decisions) != 1 {
		t.Fatalf("Select() = %d decisions, want 1", len(decisions))
	}
	if decisions[0].Action != followup.ActionMarkCompleted {
		t.Errorf("Action = %q, want mark-completed", decisions[0].Action)
	}
	if len(decisions[0].Unsigned) != 0 {
		t.Errorf("Unsigned = %v, want empty", decisions[0].Unsigned)
	}
}

func TestSelectSkipsNotDue(t *testing.T) {
	entries := []tracking.Entry{pendingEntry("doc-recent", selNow.Add(-time.Hour))}
	details := map[string]*signing.Details{"doc-recent": unsignedDetails("doc-recent")}

	if decisions := followup.Select(entries, details, selNow, selThreshold); len(decisions) != 0 {
		t.Errorf("Select() = %d decisions, want 0", len(decisions))
	}
}

func TestSelectCompletesSignedBeforeThreshold(t *testing.T) {
	// A fully signed document is closed out even when its wait is still
	// inside the reminder threshold.
	entries := []tracking.Entry{pendingEntry("doc-quick", selNow.Add(-10*time.Hour))}
	details := map[string]*signing.Details{"doc-quick": signedDetails("doc-quick")}

	decisions := followup.Select(entries, details, selNow, selThreshold)
	if len(decisions) != 1 {
		t.Fatalf("Select() = %d decisions, want 1", len(decisions))
	}
	if decisions[0].Action != followup.ActionMarkCompleted {
		t.Errorf("Action = %q, want mark-completed", decisions[0].Action)
	}
}

func TestSelectSkipsMissingDetails(t *testing.T) {
	entries := []tracking.Entry{pendingEntry("doc-1", selNow.Add(-48*time.Hour))}

	// No provider details gathered; the entry stays due for the next run.
	if decisions := followup.Select(entries, nil, selNow, selThreshold); len(decisions) != 0 {
		t.Errorf("Select() = %d decisions, want 0", len(decisions))
	}
}

func TestSelectOrdersBySendTime(t *testing.T) {
	entries := []tracking.Entry{
		pendingEntry("doc-newer", selNow.Add(-48*time.Hour)),
		pendingEntry("doc-older", selNow.Add(-96*time.Hour)),
	}
	details := map[string]*signing.Details{
		"doc-newer": unsignedDetails("doc-newer"),
		"doc-older": unsignedDetails("doc-older"),
	}

	decisions := followup.Select(entries, details, selNow, selThreshold)
	if len(decisions) != 2 {
		t.Fatalf("Select() = %d decisions, want 2", len(decisions))
	}
	if decisions[0].Entry.DocumentID != "doc-older" {
		t.Errorf("decisions[0] = %q, want doc-older first", decisions[0].Entry.DocumentID)
	}
}

func TestSelectCompletedEntryNeverActs(t *testing.T) {
	entry := pendingEntry("doc-1", selNow.Add(-48*time.Hour))
	entry.Status = tracking.StatusCompleted
	details := map[string]*signing.Details{"doc-1": unsignedDetails("doc-1")}

	if decisions := followup.Select([]tracking.Entry{entry}, details, selNow, selThreshold); len(decisions) != 0 {
		t.Errorf("Select() = %d decisions, want 0 for completed entry", len(decisions))
	}
}
