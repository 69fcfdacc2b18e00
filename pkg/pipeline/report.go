package pipeline

// Outcome tags the result of one step within a run.
type Outcome string

// Step outcomes. Steps following a failed step are skipped; steps following
// a closed gate carry the distinct skipped-by-gate tag so a report alone
// shows why a run ended early.
const (
	OutcomeSucceeded     Outcome = "succeeded"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeSkippedByGate Outcome = "skipped-by-gate"
	OutcomeFailed        Outcome = "failed"
)

// StepResult records the outcome of one step, in step order within a Report.
type StepResult struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// Report summarizes a single pipeline execution.
type Report struct {
	// Steps holds one result per registered step, in registration order.
	Steps []StepResult `json:"steps"`

	// Aborted is true when a gate ended the run before all steps executed.
	// An aborted run is not a failed run.
	Aborted bool `json:"aborted"`

	// Err is the first fatal step error, wrapped with the step name.
	Err error `json:"-"`
}

// Failed reports whether a step returned a fatal error.
func (r *Report) Failed() bool {
	return r.Err != nil
}

// Completed reports whether every step executed successfully.
func (r *Report) Completed() bool {
	return !r.Aborted && r.Err == nil
}

// Outcome returns the recorded outcome for the named step,
// or an empty Outcome if the step is unknown.
func (r *Report) Outcome(name string) Outcome {
	for _, s := range r.Steps {
		if s.Name == name {
			return s.Outcome
		}
	}
	return ""
}
