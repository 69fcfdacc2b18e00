package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/signetlabs/chase/pkg/pipeline"
)

type counters struct {
	a, b, c int
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func threeSteps(t *testing.T, fail string, gateAfterA bool) *pipeline.Pipeline[counters] {
	t.Helper()
	p := pipeline.New[counters]("test", testLogger())

	step := func(name string, apply func(*counters)) func(context.Context, counters) (counters, error) {
		return func(_ context.Context, s counters) (counters, error) {
			if name == fail {
				return s, errors.New("step exploded")
			}
			apply(&s)
			return s, nil
		}
	}

	if err := p.AddStep("a", step("a", func(s *counters) { s.a++ })); err != nil {
		t.Fatalf("AddStep(a) error = %v", err)
	}
	if err := p.AddStep("b", step("b", func(s *counters) { s.b++ })); err != nil {
		t.Fatalf("AddStep(b) error = %v", err)
	}
	if err := p.AddStep("c", step("c", func(s *counters) { s.c++ })); err != nil {
		t.Fatalf("AddStep(c) error = %v", err)
	}

	if gateAfterA {
		if err := p.AddGate("a", func(s counters) bool { return false }); err != nil {
			t.Fatalf("AddGate(a) error = %v", err)
		}
	}
	return p
}

func TestExecuteAllSucceed(t *testing.T) {
	p := threeSteps(t, "", false)

	state, report := p.Execute(context.Background(), counters{})
	if !report.Completed() {
		t.Fatalf("Completed() = false: %+v", report)
	}
	if state.a != 1 || state.b != 1 || state.c != 1 {
		t.Errorf("state = %+v, want all steps applied", state)
	}
	for _, name := range []string{"a", "b", "c"} {
		if got := report.Outcome(name); got != pipeline.OutcomeSucceeded {
			t.Errorf("Outcome(%s) = %q, want succeeded", name, got)
		}
	}
}

func TestExecuteStepFailureSkipsRest(t *testing.T) {
	p := threeSteps(t, "b", false)

	state, report := p.Execute(context.Background(), counters{})
	if !report.Failed() {
		t.Fatal("Failed() = false, want step failure")
	}
	if report.Completed() {
		t.Error("Completed() = true for failed run")
	}
	if state.c != 0 {
		t.Errorf("step c ran after failure: %+v", state)
	}
	if got := report.Outcome("b"); got != pipeline.OutcomeFailed {
		t.Errorf("Outcome(b) = %q, want failed", got)
	}
	if got := report.Outcome("c"); got != pipeline.OutcomeSkipped {
		t.Errorf("Outcome(c) = %q, want skipped", got)
	}

	// The error names the failing step.
	if report.Err == nil || report.Err.Error() != "b: step exploded" {
		t.Errorf("Err = %v", report.Err)
	}
}

func TestExecuteGateAborts(t *testing.T) {
	p := threeSteps(t, "", true)

	state, report := p.Execute(context.Background(), counters{})
	if !report.Aborted {
		t.Fatal("Aborted = false, want gate abort")
	}
	if report.Failed() {
		t.Errorf("Failed() = true, gate abort is not a failure: %v", report.Err)
	}
	if state.a != 1 || state.b != 0 {
		t.Errorf("state = %+v, want only step a applied", state)
	}

	// Gate skips carry their own tag, distinct from failure skips.
	for _, name := range []string{"b", "c"} {
		if got := report.Outcome(name); got != pipeline.OutcomeSkippedByGate {
			t.Errorf("Outcome(%s) = %q, want skipped-by-gate", name, got)
		}
	}
}

func TestAddStepRejectsDuplicates(t *testing.T) {
	p := pipeline.New[int]("dup", testLogger())
	noop := func(_ context.Context, s int) (int, error) { return s, nil }

	if err := p.AddStep("only", noop); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}
	if err := p.AddStep("only", noop); err == nil {
		t.Error("AddStep() duplicate name expected error")
	}
	if err := p.AddStep("", noop); err == nil {
		t.Error("AddStep() empty name expected error")
	}
}

func TestAddGateRejectsUnknownStep(t *testing.T) {
	p := pipeline.New[int]("gates", testLogger())
	noop := func(_ context.Context, s int) (int, error) { return s, nil }
	allow := func(int) bool { return true }

	if err := p.AddGate("missing", allow); err == nil {
		t.Error("AddGate() unknown step expected error")
	}

	if err := p.AddStep("real", noop); err != nil {
		t.Fatalf("AddStep() error = %v", err)
	}
	if err := p.AddGate("real", allow); err != nil {
		t.Errorf("AddGate() error = %v", err)
	}
	if err := p.AddGate("real", allow); err == nil {
		t.Error("AddGate() duplicate expected error")
	}
}

func TestExecuteReusable(t *testing.T) {
	p := threeSteps(t, "", false)

	first, _ := p.Execute(context.Background(), counters{})
	second, _ := p.Execute(context.Background(), counters{})
	if first != second {
		t.Errorf("runs diverged: %+v vs %+v", first, second)
	}
}
