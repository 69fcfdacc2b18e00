// Package scheduler runs a job once immediately and then once per day at a
// fixed local wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RunFunc is the job the scheduler executes. Errors are logged, never fatal;
// the next trigger is always scheduled.
type RunFunc func(ctx context.Context) error

// Scheduler fires a RunFunc daily at a configured HH:MM. The first run
// happens immediately on Start. A run that overlaps its next trigger defers
// that trigger rather than dropping it.
type Scheduler struct {
	hour   int
	minute int
	run    RunFunc
	logger *slog.Logger

	// now is a seam for tests.
	now func() time.Time
}

// New creates a Scheduler firing daily at dailyTime, formatted "15:04".
func New(dailyTime string, run RunFunc, logger *slog.Logger) (*Scheduler, error) {
	parsed, err := time.Parse("15:04", dailyTime)
	if err != nil {
		return nil, fmt.Errorf("invalid daily time %q: %w", dailyTime, err)
	}

	return &Scheduler{
		hour:   parsed.Hour(),
		minute: parsed.Minute(),
		run:    run,
		logger: logger.With("system", "scheduler"),
		now:    time.Now,
	}, nil
}

// Start executes the job immediately, then blocks firing it daily until
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info(
		"scheduler started",
		"daily_time", fmt.Sprintf("%02d:%02d", s.hour, s.minute),
	)

	s.execute(ctx)

	trigger := s.nextTrigger(s.now())
	for {
		now := s.now()
		if now.Before(trigger) {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return ctx.Err()
			case <-time.After(trigger.Sub(now)):
			}
		}

		s.execute(ctx)
		trigger = s.nextTrigger(trigger)
	}
}

// execute runs the job, containing panics and logging failures so one bad
// run never kills the schedule.
func (s *Scheduler) execute(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("run panicked", "panic", r)
		}
	}()

	start := s.now()
	if err := s.run(ctx); err != nil {
		s.logger.Error("run failed", "error", err, "duration", s.now().Sub(start))
		return
	}
	s.logger.Info("run completed", "duration", s.now().Sub(start))
}

// nextTrigger returns the first instant strictly after reference at the
// configured wall-clock time.
func (s *Scheduler) nextTrigger(reference time.Time) time.Time {
	next := time.Date(
		reference.Year(), reference.Month(), reference.Day(),
		s.hour, s.minute, 0, 0,
		reference.Location(),
	)
	if !next.After(reference) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
