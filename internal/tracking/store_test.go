package tracking_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signetlabs/chase/internal/tracking"
	"github.com/signetlabs/chase/pkg/signing"
)

func newStore(t *testing.T) *tracking.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return tracking.NewStore(filepath.Join(t.TempDir(), "tracking.json"), logger)
}

func entry(id string, sentAt time.Time) tracking.Entry {
	return tracking.Entry{
		DocumentID:   id,
		DocumentName: "Agreement " + id,
		Recipients: []signing.Recipient{
			{Email: "alex@example.com", FirstName: "Alex", Role: signing.RoleSigner},
		},
		SentAt: sentAt,
		Status: tracking.StatusPending,
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := newStore(t)

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Load() = %d entries, want 0", len(entries))
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	store := newStore(t)
	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := store.Upsert(entry("doc-1", sentAt)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Find("doc-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.DocumentName != "Agreement doc-1" {
		t.Errorf("DocumentName = %q", got.DocumentName)
	}
	if !got.SentAt.Equal(sentAt) {
		t.Errorf("SentAt = %v, want %v", got.SentAt, sentAt)
	}
	if got.FollowupCount != 0 {
		t.Errorf("FollowupCount = %d, want 0", got.FollowupCount)
	}
	if got.LastFollowupAt != nil {
		t.Errorf("LastFollowupAt = %v, want nil", got.LastFollowupAt)
	}
	if got.Status != tracking.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
}

func TestUpsertPreservesOtherEntries(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := store.Upsert(entry("doc-1", base)); err != nil {
		t.Fatalf("Upsert(doc-1) error = %v", err)
	}
	if err := store.Upsert(entry("doc-2", base.Add(time.Hour))); err != nil {
		t.Fatalf("Upsert(doc-2) error = %v", err)
	}

	entries, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load() = %d entries, want 2", len(entries))
	}
}

func TestFindDue(t *testing.T) {
	store := newStore(t)
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	threshold := 24 * time.Hour

	old := entry("doc-old", now.Add(-72*time.Hour))
	recent := entry("doc-recent", now.Add(-2*time.Hour))
	followed := entry("doc-followed", now.Add(-72*time.Hour))
	followedAt := now.Add(-time.Hour)
	followed.LastFollowupAt = &followedAt
	followed.FollowupCount = 1
	done := entry("doc-done", now.Add(-96*time.Hour))
	done.Status = tracking.StatusCompleted
	boundary := entry("doc-boundary", now.Add(-threshold))

	for _, e := range []tracking.Entry{recent, old, followed, done, boundary} {
		if err := store.Upsert(e); err != nil {
			t.Fatalf("Upsert(%s) error = %v", e.DocumentID, err)
		}
	}

	due, err := store.FindDue(now, threshold)
	if err != nil {
		t.Fatalf("FindDue() error = %v", err)
	}

	// Oldest send first; recent activity and completed entries excluded,
	// elapsed exactly at the threshold included.
	want := []string{"doc-old", "doc-boundary"}
	if len(due) != len(want) {
		t.Fatalf("FindDue() = %d entries, want %d", len(due), len(want))
	}
	for i, id := range want {
		if due[i].DocumentID != id {
			t.Errorf("due[%d] = %q, want %q", i, due[i].DocumentID, id)
		}
	}
}

func TestRecordFollowup(t *testing.T) {
	store := newStore(t)
	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := sentAt.Add(48 * time.Hour)

	if err := store.Upsert(entry("doc-1", sentAt)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.RecordFollowup("doc-1", at); err != nil {
		t.Fatalf("RecordFollowup() error = %v", err)
	}

	got, err := store.Find("doc-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.FollowupCount != 1 {
		t.Errorf("FollowupCount = %d, want 1", got.FollowupCount)
	}
	if got.LastFollowupAt == nil || !got.LastFollowupAt.Equal(at) {
		t.Errorf("LastFollowupAt = %v, want %v", got.LastFollowupAt, at)
	}

	// A follow-up pushes the entry out of the due window.
	due, err := store.FindDue(at.Add(time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("FindDue() error = %v", err)
	}
	if len(due) != 0 {
		t.Errorf("FindDue() after follow-up = %d entries, want 0", len(due))
	}
}

func TestRecordFollowupUnknownDocument(t *testing.T) {
	store := newStore(t)

	err := store.RecordFollowup("missing", time.Now())
	if !errors.Is(err, tracking.ErrNotFound) {
		t.Errorf("RecordFollowup() error = %v, want ErrNotFound", err)
	}
}

func TestRecordFollowupCompletedDocument(t *testing.T) {
	store := newStore(t)
	e := entry("doc-1", time.Now().Add(-48*time.Hour))
	e.Status = tracking.StatusCompleted

	if err := store.Upsert(e); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	err := store.RecordFollowup("doc-1", time.Now())
	if !errors.Is(err, tracking.ErrCompleted) {
		t.Errorf("RecordFollowup() error = %v, want ErrCompleted", err)
	}
}

func TestMarkCompleted(t *testing.T) {
	store := newStore(t)

	if err := store.Upsert(entry("doc-1", time.Now().Add(-48*time.Hour))); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := store.MarkCompleted("doc-1"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	got, err := store.Find("doc-1")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.Status != tracking.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}

	// Completing twice is a no-op.
	if err := store.MarkCompleted("doc-1"); err != nil {
		t.Errorf("MarkCompleted() second call error = %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	pending := entry("doc-pending", base)
	completed := entry("doc-completed", base.Add(time.Hour))
	completed.Status = tracking.StatusCompleted

	for _, e := range []tracking.Entry{pending, completed} {
		if err := store.Upsert(e); err != nil {
			t.Fatalf("Upsert(%s) error = %v", e.DocumentID, err)
		}
	}

	all, err := store.List("")
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(all) = %d entries, want 2", len(all))
	}

	onlyPending, err := store.List(tracking.StatusPending)
	if err != nil {
		t.Fatalf("List(pending) error = %v", err)
	}
	if len(onlyPending) != 1 || onlyPending[0].DocumentID != "doc-pending" {
		t.Errorf("List(pending) = %v", onlyPending)
	}
}

func TestStats(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	pending := entry("doc-1", base)
	pending.FollowupCount = 2
	completed := entry("doc-2", base)
	completed.Status = tracking.StatusCompleted
	completed.FollowupCount = 1

	for _, e := range []tracking.Entry{pending, completed} {
		if err := store.Upsert(e); err != nil {
			t.Fatalf("Upsert(%s) error = %v", e.DocumentID, err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 2 || stats.Pending != 1 || stats.Completed != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.TotalFollowups != 3 {
		t.Errorf("TotalFollowups = %d, want 3", stats.TotalFollowups)
	}
}

func TestSaveLeavesOnlyStoreFile(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := tracking.NewStore(filepath.Join(dir, "tracking.json"), logger)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		if err := store.Upsert(entry(id, base)); err != nil {
			t.Fatalf("Upsert(%s) error = %v", id, err)
		}
	}

	// Writes go through temp files that must not survive the rename.
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) != 1 || files[0].Name() != "tracking.json" {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name()
		}
		t.Errorf("directory contents = %v, want only tracking.json", names)
	}
}

func TestEntryLastActivity(t *testing.T) {
	sentAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	followupAt := sentAt.Add(48 * time.Hour)

	e := tracking.Entry{SentAt: sentAt, Status: tracking.StatusPending}
	if got := e.LastActivity(); !got.Equal(sentAt) {
		t.Errorf("LastActivity() = %v, want sent time", got)
	}

	e.LastFollowupAt = &followupAt
	if got := e.LastActivity(); !got.Equal(followupAt) {
		t.Errorf("LastActivity() = %v, want follow-up time", got)
	}
}
