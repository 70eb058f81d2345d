// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.CommandRunner and
// ports.PathResolver.
type CommandRunner struct {
	mu      sync.RWMutex
	results map[string]ports.CommandResult
	errors  map[string]error
	hooks   map[string]func()
	paths   map[string]string
	calls   []ports.CommandCall
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results: make(map[string]ports.CommandResult),
		errors:  make(map[string]error),
		hooks:   make(map[string]func()),
		paths:   make(map[string]string),
		calls:   make([]ports.CommandCall, 0),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// OnRun registers a side effect executed when the command runs successfully,
// e.g. making an installed executable resolvable.
func (m *CommandRunner) OnRun(command string, args []string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[buildKey(command, args)] = fn
}

// AddPath makes an executable resolvable through LookPath.
func (m *CommandRunner) AddPath(name, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[name] = path
}

// Run executes a mock command.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	key := buildKey(command, args)

	m.mu.Lock()
	m.calls = append(m.calls, ports.CommandCall{Command: command, Args: args})
	err, hasErr := m.errors[key]
	result, hasResult := m.results[key]
	hook := m.hooks[key]
	m.mu.Unlock()

	if hasErr {
		return ports.CommandResult{}, err
	}
	if !hasResult {
		return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", command, args)
	}
	if hook != nil && result.Success() {
		hook()
	}
	return result, nil
}

// LookPath resolves executables registered with AddPath.
func (m *CommandRunner) LookPath(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if path, ok := m.paths[name]; ok {
		return path, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallLines returns recorded invocations rendered as command lines.
func (m *CommandRunner) CallLines() []string {
	calls := m.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Called reports whether the command line was invoked at least once.
func (m *CommandRunner) Called(command string, args ...string) bool {
	want := buildKey(command, args)
	for _, c := range m.Calls() {
		if buildKey(c.Command, c.Args) == want {
			return true
		}
	}
	return false
}

// Reset clears all registered results, errors, paths, and recorded calls.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.errors = make(map[string]error)
	m.hooks = make(map[string]func())
	m.paths = make(map[string]string)
	m.calls = make([]ports.CommandCall, 0)
}

func buildKey(command string, args []string) string {
	return command + ":" + strings.Join(args, ":")
}

var (
	_ ports.CommandRunner = (*CommandRunner)(nil)
	_ ports.PathResolver  = (*CommandRunner)(nil)
)
