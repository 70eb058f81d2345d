package provision

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for provisioning failures.
const (
	ErrCodePreconditionFailed = "PRECONDITION_FAILED"
	ErrCodeCheckFailed        = "CHECK_FAILED"
	ErrCodeApplyFailed        = "APPLY_FAILED"
	ErrCodeStepDuplicate      = "STEP_DUPLICATE"
	ErrCodeStepInvalid        = "STEP_INVALID"
	ErrCodeRunCancelled       = "RUN_CANCELLED"
)

// StepError is a user-facing provisioning error with an actionable suggestion.
type StepError struct {
	Code       string
	Message    string
	Step       string
	Suggestion string
	Underlying error
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	var b strings.Builder
	if e.Step != "" {
		fmt.Fprintf(&b, "step %q: ", e.Step)
	}
	b.WriteString(e.Message)
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Is matches another StepError by code.
func (e *StepError) Is(target error) bool {
	if t, ok := target.(*StepError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Step != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.Step)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// AsStepError extracts a StepError from an error chain.
func AsStepError(err error) (*StepError, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr, true
	}
	return nil, false
}

// NewPreconditionError reports a host that cannot be provisioned.
func NewPreconditionError(message, suggestion string) *StepError {
	return &StepError{
		Code:       ErrCodePreconditionFailed,
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewCheckFailedError reports a Check that could not inspect the environment.
func NewCheckFailedError(step string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeCheckFailed,
		Message:    "could not determine current state",
		Step:       step,
		Suggestion: "Resolve the cause and run groundwork again; completed steps will be skipped.",
		Underlying: err,
	}
}

// NewApplyFailedError reports an Apply that returned an error.
func NewApplyFailedError(step string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeApplyFailed,
		Message:    "failed to apply",
		Step:       step,
		Suggestion: "Resolve the cause and run groundwork again; completed steps will be skipped.",
		Underlying: err,
	}
}

// NewStepDuplicateError reports two steps sharing a name.
func NewStepDuplicateError(step string) *StepError {
	return &StepError{
		Code:       ErrCodeStepDuplicate,
		Message:    "step name is used more than once",
		Step:       step,
		Suggestion: "Each step must have a unique name within a run.",
	}
}

// NewStepInvalidError reports a malformed step list entry.
func NewStepInvalidError(position int, reason string) *StepError {
	return &StepError{
		Code:    ErrCodeStepInvalid,
		Message: fmt.Sprintf("step at position %d is invalid: %s", position, reason),
	}
}

// NewRunCancelledError reports a run stopped before the named step.
func NewRunCancelledError(step string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeRunCancelled,
		Message:    "run cancelled before step started",
		Step:       step,
		Underlying: err,
	}
}
