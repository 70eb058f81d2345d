package provision

import "context"

// RunContext is handed to every Check and Apply of a run.
type RunContext struct {
	ctx       context.Context
	values    *Values
	runID     string
	checkOnly bool
}

// NewRunContext creates a RunContext. A nil values gets a fresh carrier.
func NewRunContext(ctx context.Context, values *Values) RunContext {
	if values == nil {
		values = NewValues()
	}
	return RunContext{
		ctx:    ctx,
		values: values,
	}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// Values returns the run's shared carrier.
func (r RunContext) Values() *Values {
	return r.values
}

// RunID returns the identifier of the current run.
func (r RunContext) RunID() string {
	return r.runID
}

// CheckOnly reports whether Apply calls are suppressed.
func (r RunContext) CheckOnly() bool {
	return r.checkOnly
}

// WithRunID returns a copy carrying the given run identifier.
func (r RunContext) WithRunID(id string) RunContext {
	r.runID = id
	return r
}

// WithCheckOnly returns a copy with the check-only flag set.
func (r RunContext) WithCheckOnly(checkOnly bool) RunContext {
	r.checkOnly = checkOnly
	return r
}
