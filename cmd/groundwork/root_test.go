package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/groundwork/internal/app"
	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/tui"
)

func TestRootCommand_UseLine(t *testing.T) {
	assert.Equal(t, "groundwork", rootCmd.Use)
}

func TestRootCommand_HasPersistentFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		flag     string
		expected string
	}{
		{"config", ""},
		{"verbose", "false"},
		{"json-logs", "false"},
		{"name", ""},
		{"email", ""},
		{"no-input", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := flags.Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.expected, f.DefValue)
		})
	}

	assert.Equal(t, "v", flags.Lookup("verbose").Shorthand)
	require.NotNil(t, rootCmd.Flags().Lookup("dry-run"))
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"check", "config", "version"})
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "config user error",
			err:      config.NewConfigNotFoundError("/etc/groundwork.yaml"),
			contains: []string{"configuration file not found (at /etc/groundwork.yaml)", "Suggestion: Check the --config path"},
		},
		{
			name:     "precondition",
			err:      provision.NewPreconditionError(`unsupported operating system family "fedora"`, "Supported families: debian, ubuntu."),
			contains: []string{`unsupported operating system family "fedora"`, "Suggestion: Supported families: debian, ubuntu."},
		},
		{
			name:     "step failure hides cause by default",
			err:      provision.NewApplyFailedError("apt:package:jq", errors.New("exit 100")),
			contains: []string{"apt:package:jq: failed to apply", "Suggestion:"},
			excludes: []string{"exit 100"},
		},
		{
			name:     "step failure verbose",
			err:      provision.NewApplyFailedError("apt:package:jq", errors.New("exit 100")),
			verbose:  true,
			contains: []string{"Technical details: exit 100"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := verbose
			verbose = tt.verbose
			defer func() { verbose = prev }()

			msg := formatError(tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, msg, unwanted)
			}
		})
	}
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "✗ Error: boom\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(buf.String(), "groundwork dev\n"))
	assert.Contains(t, buf.String(), "commit: none")
}

func TestExecute_RunsOrChecks(t *testing.T) {
	fake := &fakeClient{}
	restore := overrideDeps(t, fake, false)
	defer restore()
	setIdentityFlags(t, "Ada Lovelace", "ada@example.com", false)

	require.NoError(t, execute(newTestCommand(), false))
	assert.True(t, fake.runCalled)
	assert.False(t, fake.checkCalled)
	assert.Equal(t, app.Identity{Name: "Ada Lovelace", Email: "ada@example.com"}, fake.identity)

	fake.runCalled = false
	require.NoError(t, execute(newTestCommand(), true))
	assert.True(t, fake.checkCalled)
	assert.False(t, fake.runCalled)
}

func TestExecute_PropagatesRunError(t *testing.T) {
	fake := &fakeClient{err: provision.NewApplyFailedError("layout:tree", errors.New("read-only file system"))}
	restore := overrideDeps(t, fake, false)
	defer restore()
	setIdentityFlags(t, "", "", true)

	err := execute(newTestCommand(), false)
	assert.ErrorIs(t, err, &provision.StepError{Code: provision.ErrCodeApplyFailed})
}

func TestExecute_PreconditionFailsBeforePrompt(t *testing.T) {
	fake := &fakeClient{preconditionErr: provision.NewPreconditionError(`unsupported operating system "darwin"`, "")}
	restore := overrideDeps(t, fake, true)
	defer restore()
	setIdentityFlags(t, "", "", false)

	prevPrompt := promptIdentity
	defer func() { promptIdentity = prevPrompt }()
	prompted := false
	promptIdentity = func(_ context.Context, _ io.Reader, _ io.Writer, defaults tui.Identity) (tui.Identity, error) {
		prompted = true
		return defaults, nil
	}

	err := execute(newTestCommand(), false)
	assert.ErrorIs(t, err, &provision.StepError{Code: provision.ErrCodePreconditionFailed})
	assert.False(t, prompted)
	assert.False(t, fake.runCalled)
}

func TestExecute_ConfigErrorStopsBeforeRun(t *testing.T) {
	fake := &fakeClient{}
	restore := overrideDeps(t, fake, false)
	defer restore()

	prevLoad := loadConfig
	loadConfig = func(path string) (*config.Config, error) {
		return nil, config.NewConfigNotFoundError(path)
	}
	defer func() { loadConfig = prevLoad }()

	err := execute(newTestCommand(), false)
	require.Error(t, err)
	assert.NotNil(t, config.GetUserError(err))
	assert.False(t, fake.runCalled)
}

func TestResolveIdentity(t *testing.T) {
	tests := []struct {
		name        string
		flagName    string
		flagEmail   string
		noInput     bool
		interactive bool
		answer      tui.Identity
		wantPrompt  bool
		want        app.Identity
	}{
		{
			name:        "flags complete, no prompt",
			flagName:    "Ada",
			flagEmail:   "ada@example.com",
			interactive: true,
			want:        app.Identity{Name: "Ada", Email: "ada@example.com"},
		},
		{
			name: "non-interactive never prompts",
			want: app.Identity{},
		},
		{
			name:        "no-input on a terminal",
			noInput:     true,
			interactive: true,
			flagName:    "Ada",
			want:        app.Identity{Name: "Ada"},
		},
		{
			name:        "prompt fills missing values",
			flagName:    "Ada",
			interactive: true,
			answer:      tui.Identity{Name: "Ada", Email: "ada@example.com"},
			wantPrompt:  true,
			want:        app.Identity{Name: "Ada", Email: "ada@example.com"},
		},
		{
			name:        "cancelled prompt yields empty input",
			interactive: true,
			wantPrompt:  true,
			want:        app.Identity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setIdentityFlags(t, tt.flagName, tt.flagEmail, tt.noInput)

			prevInteractive, prevPrompt := isInteractive, promptIdentity
			defer func() { isInteractive, promptIdentity = prevInteractive, prevPrompt }()

			prompted := false
			var gotDefaults tui.Identity
			isInteractive = func() bool { return tt.interactive }
			promptIdentity = func(_ context.Context, _ io.Reader, _ io.Writer, defaults tui.Identity) (tui.Identity, error) {
				prompted = true
				gotDefaults = defaults
				return tt.answer, nil
			}

			cfg := config.Default()
			cfg.Identity.Email = "config@example.com"
			got, err := resolveIdentity(context.Background(), strings.NewReader(""), io.Discard, cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPrompt, prompted)
			if tt.wantPrompt {
				assert.Equal(t, "config@example.com", gotDefaults.Email)
			}
		})
	}
}

func TestRunConfig(t *testing.T) {
	prevLoad, prevFormat := loadConfig, configFormat
	defer func() { loadConfig, configFormat = prevLoad, prevFormat }()
	loadConfig = func(string) (*config.Config, error) { return config.Default(), nil }

	t.Run("yaml", func(t *testing.T) {
		configFormat = "yaml"
		cmd := newTestCommand()
		require.NoError(t, runConfig(cmd, nil))

		var decoded map[string]interface{}
		require.NoError(t, yaml.Unmarshal(cmd.OutOrStdout().(*bytes.Buffer).Bytes(), &decoded))
		assert.Contains(t, decoded, "workspace")
		assert.Contains(t, decoded, "apt")
	})

	t.Run("toml", func(t *testing.T) {
		configFormat = "toml"
		cmd := newTestCommand()
		require.NoError(t, runConfig(cmd, nil))
		assert.Contains(t, cmd.OutOrStdout().(*bytes.Buffer).String(), "[workspace]")
	})

	t.Run("unknown format", func(t *testing.T) {
		configFormat = "json"
		err := runConfig(newTestCommand(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported format "json"`)
	})
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	return cmd
}

func overrideDeps(t *testing.T, client *fakeClient, interactive bool) func() {
	t.Helper()
	prevNew, prevLoad, prevInteractive := newGroundwork, loadConfig, isInteractive
	newGroundwork = func(_, _ io.Writer, _ ports.Logger) groundworkClient { return client }
	loadConfig = func(string) (*config.Config, error) { return config.Default(), nil }
	isInteractive = func() bool { return interactive }
	return func() {
		newGroundwork, loadConfig, isInteractive = prevNew, prevLoad, prevInteractive
	}
}

func setIdentityFlags(t *testing.T, name, email string, disablePrompt bool) {
	t.Helper()
	prevName, prevEmail, prevNoInput := nameFlag, emailFlag, noInput
	nameFlag, emailFlag, noInput = name, email, disablePrompt
	t.Cleanup(func() {
		nameFlag, emailFlag, noInput = prevName, prevEmail, prevNoInput
	})
}

type fakeClient struct {
	err             error
	preconditionErr error
	identity        app.Identity
	runCalled       bool
	checkCalled     bool
}

func (f *fakeClient) Precondition(context.Context, *config.Config) error {
	return f.preconditionErr
}

func (f *fakeClient) Run(_ context.Context, _ *config.Config, identity app.Identity) (*provision.Report, error) {
	f.runCalled = true
	f.identity = identity
	return &provision.Report{}, f.err
}

func (f *fakeClient) Check(_ context.Context, _ *config.Config, identity app.Identity) (*provision.Report, error) {
	f.checkCalled = true
	f.identity = identity
	return &provision.Report{}, f.err
}
