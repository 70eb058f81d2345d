// Package provision runs ordered, individually idempotent steps that converge
// a workstation toward a desired state.
package provision

// Step is an idempotent unit of provisioning work.
//
// Check inspects the live environment at the moment it runs. Apply is only
// called when Check reports StatusNeedsApply, and must bring the environment
// to a state where a later Check reports StatusSatisfied.
type Step interface {
	// Name returns a human-readable label, unique within a run.
	Name() string

	// Check determines whether the target state already holds.
	Check(ctx RunContext) (Status, error)

	// Apply performs the state-changing action.
	Apply(ctx RunContext) error
}

// Describer is implemented by steps that can describe what Apply changes.
type Describer interface {
	Describe() string
}

// Deferrer is implemented by steps that explain why they deferred.
type Deferrer interface {
	DeferReason() string
}

// FuncStep adapts plain functions to the Step interface.
type FuncStep struct {
	name        string
	description string
	check       func(RunContext) (Status, error)
	apply       func(RunContext) error
}

// NewFuncStep creates a step from check and apply functions.
// A nil check always reports StatusNeedsApply; a nil apply does nothing.
func NewFuncStep(name string, check func(RunContext) (Status, error), apply func(RunContext) error) *FuncStep {
	return &FuncStep{name: name, check: check, apply: apply}
}

// WithDescription sets the text used for applied status lines.
func (s *FuncStep) WithDescription(description string) *FuncStep {
	s.description = description
	return s
}

// Name returns the step name.
func (s *FuncStep) Name() string {
	return s.name
}

// Check runs the check function.
func (s *FuncStep) Check(ctx RunContext) (Status, error) {
	if s.check == nil {
		return StatusNeedsApply, nil
	}
	return s.check(ctx)
}

// Apply runs the apply function.
func (s *FuncStep) Apply(ctx RunContext) error {
	if s.apply == nil {
		return nil
	}
	return s.apply(ctx)
}

// Describe returns the configured description, or the name.
func (s *FuncStep) Describe() string {
	if s.description == "" {
		return s.name
	}
	return s.description
}

var (
	_ Step      = (*FuncStep)(nil)
	_ Describer = (*FuncStep)(nil)
)
