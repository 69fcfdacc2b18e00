package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// container is the on-disk layout: all entries keyed by document ID.
type container struct {
	Documents map[string]Entry `json:"documents"`
}

// Store is a file-backed tracking store. Every mutation rewrites the whole
// container through a temp file and rename, and a single mutex serializes
// writers, so concurrent send and follow-up runs never produce a torn read.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewStore creates a Store persisting at path. The file is created lazily
// on first write; a missing file reads as an empty store.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("system", "tracking"),
	}
}

// Path returns the store's file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns all entries keyed by document ID. A store that does not
// exist yet yields an empty map, not an error.
func (s *Store) Load() (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Upsert inserts or fully replaces the entry for entry.DocumentID and
// persists the whole store atomically.
func (s *Store) Upsert(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entries[entry.DocumentID] = entry
	return s.save(entries)
}

// Find returns the entry for a document ID.
func (s *Store) Find(documentID string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	entry, ok := entries[documentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	return &entry, nil
}

// List returns all entries ordered by sent time ascending, optionally
// filtered by status (empty status means all).
func (s *Store) List(status Status) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	var list []Entry
	for _, e := range entries {
		if status == "" || e.Status == status {
			list = append(list, e)
		}
	}
	sortBySentAt(list)
	return list, nil
}

// FindDue returns pending entries whose elapsed time since last activity
// meets the threshold, ordered by sent time ascending so the
// longest-outstanding documents come first.
func (s *Store) FindDue(now time.Time, threshold time.Duration) ([]Entry, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}

	var due []Entry
	for _, e := range entries {
		if e.Due(now, threshold) {
			due = append(due, e)
		}
	}
	sortBySentAt(due)
	return due, nil
}

// RecordFollowup increments the follow-up count and stamps the follow-up
// instant for a pending entry.
func (s *Store) RecordFollowup(documentID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entry, ok := entries[documentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	if entry.Status == StatusCompleted {
		return fmt.Errorf("%w: %s", ErrCompleted, documentID)
	}

	entry.FollowupCount++
	entry.LastFollowupAt = &at
	entries[documentID] = entry

	if err := s.save(entries); err != nil {
		return err
	}

	s.logger.Info(
		"follow-up recorded",
		"document_id", documentID,
		"followup_count", entry.FollowupCount,
	)
	return nil
}

// MarkCompleted transitions an entry to the terminal completed status.
// Marking an already-completed entry is a no-op.
func (s *Store) MarkCompleted(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entry, ok := entries[documentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}
	if entry.Status == StatusCompleted {
		return nil
	}

	entry.Status = StatusCompleted
	entries[documentID] = entry

	if err := s.save(entries); err != nil {
		return err
	}

	s.logger.Info("document completed", "document_id", documentID, "name", entry.DocumentName)
	return nil
}

// Stats summarizes the store contents.
func (s *Store) Stats() (*Stats, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusPending:
			stats.Pending++
		case StatusCompleted:
			stats.Completed++
		}
		stats.TotalFollowups += e.FollowupCount
	}
	return stats, nil
}

func (s *Store) load() (map[string]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tracking store: %w", err)
	}

	var c container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse tracking store: %w", err)
	}
	if c.Documents == nil {
		c.Documents = make(map[string]Entry)
	}
	return c.Documents, nil
}

// save writes the whole container to a temp file in the store's directory,
// syncs it, and renames it over the store path. Rename within one directory
// is atomic, so a crash mid-write leaves the previous container intact.
func (s *Store) save(entries map[string]Entry) error {
	data, err := json.MarshalIndent(container{Documents: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tracking-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func sortBySentAt(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SentAt.Before(entries[j].SentAt)
	})
}
