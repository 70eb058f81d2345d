package commandutil_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/provider/commandutil"
	"github.com/felixgeelhaar/groundwork/internal/testutil/mocks"
)

func TestIsCommandNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"exec ErrNotFound", exec.ErrNotFound, true},
		{"exec error wrapper", &exec.Error{Name: "curl", Err: exec.ErrNotFound}, true},
		{"path error", &os.PathError{Op: "fork/exec", Path: "/usr/bin/curl", Err: os.ErrNotExist}, true},
		{"other error", errors.New("nope"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, commandutil.IsCommandNotFound(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	err := commandutil.ExitError("apt-get update", ports.CommandResult{ExitCode: 100, Stderr: "E: Could not get lock\n"})
	assert.EqualError(t, err, "apt-get update failed (exit 100): E: Could not get lock")

	err = commandutil.ExitError("git config user.name", ports.CommandResult{ExitCode: 3})
	assert.EqualError(t, err, "git config user.name failed (exit 3)")
}

func TestRun(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("true", nil, ports.CommandResult{Stdout: "ok"})
	runner.AddResult("false", nil, ports.CommandResult{ExitCode: 1, Stderr: "bad"})
	runner.AddError("curl", []string{"-LsSf"}, &exec.Error{Name: "curl", Err: exec.ErrNotFound})
	runner.AddError("sudo", nil, errors.New("killed"))

	result, err := commandutil.Run(context.Background(), runner, "probe", "true")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Stdout)

	_, err = commandutil.Run(context.Background(), runner, "probe", "false")
	assert.EqualError(t, err, "probe failed (exit 1): bad")

	_, err = commandutil.Run(context.Background(), runner, "install command 1 for uv", "curl", "-LsSf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install command 1 for uv: curl is not installed or not on PATH")
	assert.True(t, commandutil.IsCommandNotFound(err))

	_, err = commandutil.Run(context.Background(), runner, "apt-get update", "sudo")
	assert.EqualError(t, err, "apt-get update: killed")
}
