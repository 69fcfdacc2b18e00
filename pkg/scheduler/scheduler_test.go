package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestNewRejectsInvalidTime(t *testing.T) {
	tests := []string{"", "9:99", "25:00", "morning"}
	for _, input := range tests {
		if _, err := New(input, func(context.Context) error { return nil }, testLogger()); err == nil {
			t.Errorf("New(%q) expected error", input)
		}
	}
}

func TestNextTrigger(t *testing.T) {
	s, err := New("09:00", func(context.Context) error { return nil }, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name      string
		reference time.Time
		want      time.Time
	}{
		{
			name:      "before today's slot",
			reference: time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC),
			want:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "after today's slot rolls to tomorrow",
			reference: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
			want:      time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "exactly at the slot rolls to tomorrow",
			reference: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			want:      time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.nextTrigger(tt.reference)
			if !got.Equal(tt.want) {
				t.Errorf("nextTrigger(%v) = %v, want %v", tt.reference, got, tt.want)
			}
			if !got.After(tt.reference) {
				t.Errorf("nextTrigger(%v) = %v, not strictly after reference", tt.reference, got)
			}
		})
	}
}

func TestStartRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s, err := New("09:00", func(context.Context) error {
		runs.Add(1)
		cancel()
		return nil
	}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = s.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1 immediate run", runs.Load())
	}
}

func TestStartSurvivesRunFailure(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s, err := New("09:00", func(context.Context) error {
		runs.Add(1)
		cancel()
		return errors.New("boom")
	}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// A failing run must not abort Start; cancellation does.
	if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Start() error = %v, want context.Canceled", err)
	}
	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
}

func TestExecuteContainsPanic(t *testing.T) {
	s, err := New("09:00", func(context.Context) error {
		panic("job blew up")
	}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Must not propagate the panic.
	s.execute(context.Background())
}
