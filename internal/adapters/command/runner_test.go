package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealRunner_Run_Success(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRealRunner_Run_NonZeroExit(t *testing.T) {
	runner := NewRealRunner()

	result, err := runner.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.NoError(t, err, "exit codes are reported through the result")
	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops\n", result.Stderr)
}

func TestRealRunner_Run_NotFound(t *testing.T) {
	runner := NewRealRunner()

	_, err := runner.Run(context.Background(), "nonexistent-command-12345")
	assert.Error(t, err)
}

func TestRealRunner_WithEnv(t *testing.T) {
	runner := NewRealRunner().WithEnv("GROUNDWORK_TEST_VALUE=42")

	result, err := runner.Run(context.Background(), "sh", "-c", "echo $GROUNDWORK_TEST_VALUE")
	require.NoError(t, err)
	assert.Equal(t, "42\n", result.Stdout)
}

func TestRealRunner_LookPath(t *testing.T) {
	runner := NewRealRunner()

	path, err := runner.LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	_, err = runner.LookPath("nonexistent-command-12345")
	assert.Error(t, err)
}
