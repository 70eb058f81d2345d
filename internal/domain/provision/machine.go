package provision

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

const (
	stateRunning   = "running"
	stateSucceeded = "succeeded"
	stateAborted   = "aborted"
)

const (
	eventStepsDone  = "STEPS_DONE"
	eventStepFailed = "STEP_FAILED"
	eventCancelled  = "CANCELLED"
)

// runScope is the statekit context type for a run. The run carries no state
// of its own beyond the machine's current value.
type runScope struct{}

// runMachine tracks the running → succeeded | aborted lifecycle of one run.
// Both outcomes are final; a re-run starts a new machine.
type runMachine struct {
	interp *statekit.Interpreter[runScope]
}

func newRunMachine() (*runMachine, error) {
	machine, err := statekit.NewMachine[runScope]("provision-run").
		WithInitial(stateRunning).
		WithContext(runScope{}).
		State(stateRunning).
		On(eventStepsDone).Target(stateSucceeded).
		On(eventStepFailed).Target(stateAborted).
		On(eventCancelled).Target(stateAborted).Done().
		State(stateSucceeded).Final().Done().
		State(stateAborted).Final().Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build run state machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()

	return &runMachine{interp: interp}, nil
}

func (m *runMachine) complete() {
	m.interp.Send(statekit.Event{Type: eventStepsDone})
}

func (m *runMachine) fail(step string) {
	m.interp.Send(statekit.Event{Type: eventStepFailed, Payload: step})
}

func (m *runMachine) cancel(step string) {
	m.interp.Send(statekit.Event{Type: eventCancelled, Payload: step})
}

func (m *runMachine) state() RunState {
	return RunState(m.interp.State().Value)
}

func (m *runMachine) stop() {
	m.interp.Stop()
}
