package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandResult_Success(t *testing.T) {
	t.Parallel()

	assert.True(t, CommandResult{ExitCode: 0}.Success())
	assert.False(t, CommandResult{ExitCode: 1, Stderr: "boom"}.Success())
}

func TestCommandResult_FirstLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{name: "single line", stdout: "git version 2.43.0\n", want: "git version 2.43.0"},
		{name: "leading blank lines", stdout: "\n\n  go version go1.22.1 linux/amd64\nmore", want: "go version go1.22.1 linux/amd64"},
		{name: "empty", stdout: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CommandResult{Stdout: tt.stdout}.FirstLine())
		})
	}
}

func TestCommandCall_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "uname", CommandCall{Command: "uname"}.String())
	assert.Equal(t, "sudo apt-get install -y git", CommandCall{
		Command: "sudo",
		Args:    []string{"apt-get", "install", "-y", "git"},
	}.String())
}
