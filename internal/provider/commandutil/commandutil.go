// Package commandutil holds the exit-status handling shared by steps that
// shell out.
package commandutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// IsCommandNotFound reports whether an error indicates a missing executable.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return true
	}
	return false
}

// ExitError describes a command that ran but exited non-zero.
func ExitError(what string, result ports.CommandResult) error {
	stderr := strings.TrimSpace(result.Stderr)
	if stderr == "" {
		return fmt.Errorf("%s failed (exit %d)", what, result.ExitCode)
	}
	return fmt.Errorf("%s failed (exit %d): %s", what, result.ExitCode, stderr)
}

// Run runs a command and turns both a start failure and a non-zero exit into
// an error labelled with what.
func Run(ctx context.Context, runner ports.CommandRunner, what, command string, args ...string) (ports.CommandResult, error) {
	result, err := runner.Run(ctx, command, args...)
	if err != nil {
		if IsCommandNotFound(err) {
			return result, fmt.Errorf("%s: %s is not installed or not on PATH: %w", what, command, err)
		}
		return result, fmt.Errorf("%s: %w", what, err)
	}
	if !result.Success() {
		return result, ExitError(what, result)
	}
	return result, nil
}
