package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// Provisioner runs an ordered list of steps against the live environment.
// Steps run strictly in declaration order; the first failure aborts the run.
type Provisioner struct {
	reporter  Reporter
	logger    ports.Logger
	checkOnly bool
	newRunID  func() string
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Provisioner) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l ports.Logger) Option {
	return func(p *Provisioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCheckOnly makes the run evaluate every Check without calling Apply.
func WithCheckOnly(checkOnly bool) Option {
	return func(p *Provisioner) {
		p.checkOnly = checkOnly
	}
}

// WithRunIDFunc overrides run identifier generation.
func WithRunIDFunc(fn func() string) Option {
	return func(p *Provisioner) {
		if fn != nil {
			p.newRunID = fn
		}
	}
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{
		reporter: NopReporter{},
		logger:   nopLogger{},
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes steps in order, sharing values between them.
//
// For each step Check runs first; a satisfied step is skipped, a deferred step
// is recorded and passed over, otherwise Apply runs. A Check or Apply error
// marks the step failed and no further step is touched. The returned report is
// non-nil whenever the step list was valid, including aborted runs; the error
// is a *StepError identifying the failing step.
func (p *Provisioner) Run(ctx context.Context, steps []Step, values *Values) (*Report, error) {
	if err := validateSteps(steps); err != nil {
		return nil, err
	}

	machine, err := newRunMachine()
	if err != nil {
		return nil, err
	}
	defer machine.stop()

	runID := p.newRunID()
	runCtx := NewRunContext(ctx, values).WithRunID(runID).WithCheckOnly(p.checkOnly)
	log := p.logger.With(ports.F("run_id", runID))

	report := &Report{
		RunID:   runID,
		State:   machine.state(),
		Results: make([]StepResult, 0, len(steps)),
	}
	started := time.Now()

	log.Debug(ctx, "run started", ports.F("steps", len(steps)), ports.F("check_only", p.checkOnly))

	finish := func() {
		report.State = machine.state()
		report.Duration = time.Since(started)
		p.reporter.RunFinished(report)
		log.Info(ctx, "run finished",
			ports.F("state", report.State.String()),
			ports.F("duration", report.Duration.String()))
	}

	for _, step := range steps {
		if cerr := ctx.Err(); cerr != nil {
			machine.cancel(step.Name())
			finish()
			return report, NewRunCancelledError(step.Name(), cerr)
		}

		p.reporter.StepStarted(step.Name())
		result := p.runStep(runCtx, step)
		report.Results = append(report.Results, result)
		p.reporter.StepFinished(result)

		fields := []ports.Field{
			ports.F("step", result.Name),
			ports.F("outcome", result.Outcome.String()),
			ports.F("duration", result.Duration.String()),
		}
		if result.Outcome.IsFailure() {
			log.Error(ctx, "step failed", append(fields, ports.Err(result.Err))...)
			machine.fail(step.Name())
			report.FailedStep = step.Name()
			finish()
			return report, result.Err
		}
		log.Debug(ctx, "step finished", fields...)
	}

	machine.complete()
	finish()
	return report, nil
}

// runStep drives a single step from pending to a terminal outcome.
func (p *Provisioner) runStep(ctx RunContext, step Step) StepResult {
	name := step.Name()
	result := StepResult{Name: name, Outcome: OutcomePending}
	start := time.Now()

	status, err := step.Check(ctx)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = NewCheckFailedError(name, err)
		result.Duration = time.Since(start)
		return result
	}

	switch status {
	case StatusSatisfied:
		result.Outcome = OutcomeSkipped
		result.Detail = "already in place"
	case StatusDeferred:
		result.Outcome = OutcomeDeferred
		result.Detail = "required input not supplied"
		if d, ok := step.(Deferrer); ok {
			result.Detail = d.DeferReason()
		}
	case StatusNeedsApply:
		if ctx.CheckOnly() {
			result.Outcome = OutcomePlanned
			result.Detail = describe(step)
			break
		}
		if err := step.Apply(ctx); err != nil {
			result.Outcome = OutcomeFailed
			result.Err = NewApplyFailedError(name, err)
			break
		}
		result.Outcome = OutcomeApplied
		result.Detail = describe(step)
	default:
		result.Outcome = OutcomeFailed
		result.Err = NewCheckFailedError(name, fmt.Errorf("unexpected status %q", status))
	}

	result.Duration = time.Since(start)
	return result
}

func describe(step Step) string {
	if d, ok := step.(Describer); ok {
		if text := d.Describe(); text != "" {
			return text
		}
	}
	return step.Name()
}

// validateSteps rejects nil steps, blank names, and duplicate names before
// anything runs.
func validateSteps(steps []Step) error {
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		if step == nil {
			return NewStepInvalidError(i, "step is nil")
		}
		name := step.Name()
		if strings.TrimSpace(name) == "" {
			return NewStepInvalidError(i, "step name is empty")
		}
		if _, dup := seen[name]; dup {
			return NewStepDuplicateError(name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// nopLogger is used when no logger is configured.
type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...ports.Field) {}
func (nopLogger) Info(context.Context, string, ...ports.Field)  {}
func (nopLogger) Warn(context.Context, string, ...ports.Field)  {}
func (nopLogger) Error(context.Context, string, ...ports.Field) {}
func (l nopLogger) With(...ports.Field) ports.Logger            { return l }
func (nopLogger) Level() ports.Level                            { return ports.LevelError }
func (nopLogger) SetLevel(ports.Level)                          {}
