package provision

import "time"

// StepResult captures the outcome of one step within a run.
type StepResult struct {
	Name     string
	Outcome  Outcome
	Detail   string
	Err      error
	Duration time.Duration
}

// Report summarizes a finished (or aborted) run.
type Report struct {
	RunID      string
	State      RunState
	Results    []StepResult
	FailedStep string
	Duration   time.Duration
}

// Succeeded reports whether the run reached StateSucceeded.
func (r *Report) Succeeded() bool {
	return r.State == StateSucceeded
}

// Count returns how many steps ended with the given outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Outcomes returns each step's outcome keyed by step name.
func (r *Report) Outcomes() map[string]Outcome {
	out := make(map[string]Outcome, len(r.Results))
	for _, res := range r.Results {
		out[res.Name] = res.Outcome
	}
	return out
}

// Result returns the result recorded for a step name.
func (r *Report) Result(name string) (StepResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return StepResult{}, false
}
