// Package pipeline implements a generic ordered-step execution engine.
// A pipeline is a fixed sequence of typed steps over a shared state value,
// with optional gate predicates that can end a run cleanly after a named
// step. The engine holds no state between runs; the same pipeline may be
// executed repeatedly with independent state values.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Step is one ordered unit of work. Run receives the accumulated state and
// returns the extended state. A non-nil error is fatal to the run: the
// engine records the failure and does not execute any further steps.
type Step[S any] struct {
	Name string
	Run  func(ctx context.Context, state S) (S, error)
}

// Pipeline executes steps in registration order, evaluating gates between them.
type Pipeline[S any] struct {
	name   string
	steps  []Step[S]
	gates  map[string]func(S) bool
	logger *slog.Logger
}

// New creates an empty pipeline with a name used for logging.
func New[S any](name string, logger *slog.Logger) *Pipeline[S] {
	return &Pipeline[S]{
		name:   name,
		gates:  make(map[string]func(S) bool),
		logger: logger.With("pipeline", name),
	}
}

// AddStep appends a step. Step names must be unique within the pipeline.
func (p *Pipeline[S]) AddStep(name string, run func(ctx context.Context, state S) (S, error)) error {
	if name == "" {
		return fmt.Errorf("step name cannot be empty")
	}
	for _, s := range p.steps {
		if s.Name == name {
			return fmt.Errorf("duplicate step: %s", name)
		}
	}
	p.steps = append(p.steps, Step[S]{Name: name, Run: run})
	return nil
}

// AddGate registers a predicate evaluated after the named step succeeds.
// A false result ends the run without error; the remaining steps are
// reported as skipped-by-gate.
func (p *Pipeline[S]) AddGate(after string, allow func(state S) bool) error {
	if !p.hasStep(after) {
		return fmt.Errorf("gate references unknown step: %s", after)
	}
	if _, exists := p.gates[after]; exists {
		return fmt.Errorf("duplicate gate after step: %s", after)
	}
	p.gates[after] = allow
	return nil
}

// Execute runs the pipeline against the initial state. It always returns the
// state as accumulated so far plus a report with one result per step in step
// order, so callers can display partial progress for aborted and failed runs.
func (p *Pipeline[S]) Execute(ctx context.Context, initial S) (S, *Report) {
	state := initial
	report := &Report{Steps: make([]StepResult, 0, len(p.steps))}

	for i, step := range p.steps {
		next, err := step.Run(ctx, state)
		if err != nil {
			p.logger.Error("step failed", "step", step.Name, "error", err)
			report.Steps = append(report.Steps, StepResult{Name: step.Name, Outcome: OutcomeFailed, Err: err})
			report.Err = fmt.Errorf("%s: %w", step.Name, err)
			p.skipRemaining(report, i+1, OutcomeSkipped)
			return state, report
		}

		state = next
		report.Steps = append(report.Steps, StepResult{Name: step.Name, Outcome: OutcomeSucceeded})
		p.logger.Debug("step complete", "step", step.Name)

		if gate, ok := p.gates[step.Name]; ok && !gate(state) {
			p.logger.Info("gate closed, ending run", "after", step.Name)
			report.Aborted = true
			p.skipRemaining(report, i+1, OutcomeSkippedByGate)
			return state, report
		}
	}

	return state, report
}

func (p *Pipeline[S]) skipRemaining(report *Report, from int, outcome Outcome) {
	for _, step := range p.steps[from:] {
		report.Steps = append(report.Steps, StepResult{Name: step.Name, Outcome: outcome})
	}
}

func (p *Pipeline[S]) hasStep(name string) bool {
	for _, s := range p.steps {
		if s.Name == name {
			return true
		}
	}
	return false
}
