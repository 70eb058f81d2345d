package provision

// Status is the answer a step's Check gives about the live environment.
type Status string

const (
	// StatusSatisfied indicates the target state already holds.
	StatusSatisfied Status = "satisfied"
	// StatusNeedsApply indicates Apply must run to reach the target state.
	StatusNeedsApply Status = "needs-apply"
	// StatusDeferred indicates optional input was not supplied, so the step
	// takes no action and raises no error.
	StatusDeferred Status = "deferred"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Outcome is the terminal result recorded for a step within one run.
type Outcome string

const (
	// OutcomePending is the initial outcome before the step runs.
	OutcomePending Outcome = "pending"
	// OutcomeSkipped means Check passed and Apply was not called.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeApplied means Apply ran and succeeded.
	OutcomeApplied Outcome = "applied"
	// OutcomeDeferred means required operator input was absent.
	OutcomeDeferred Outcome = "deferred"
	// OutcomeFailed means Check or Apply returned an error.
	OutcomeFailed Outcome = "failed"
	// OutcomePlanned means Apply would run; only produced by check-only runs.
	OutcomePlanned Outcome = "planned"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// IsTerminal reports whether the outcome is final for the run.
func (o Outcome) IsTerminal() bool {
	switch o {
	case OutcomeSkipped, OutcomeApplied, OutcomeDeferred, OutcomeFailed, OutcomePlanned:
		return true
	case OutcomePending:
		return false
	}
	return false
}

// IsFailure reports whether the outcome aborts the run.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFailed
}

// RunState is the lifecycle state of a run.
type RunState string

const (
	// StateRunning is the state while steps are executing.
	StateRunning RunState = stateRunning
	// StateSucceeded means every step reached a non-failed terminal outcome.
	StateSucceeded RunState = stateSucceeded
	// StateAborted means a step failed or the run was cancelled.
	StateAborted RunState = stateAborted
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}
