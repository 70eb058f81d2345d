package main

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/groundwork/internal/adapters/filesystem"
	"github.com/felixgeelhaar/groundwork/internal/adapters/logging"
	"github.com/felixgeelhaar/groundwork/internal/app"
	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/tui"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report which steps would change the system",
	Long: `Check runs every step's check against the live system without applying
anything. Steps that would act are reported as "would apply".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return execute(cmd, true)
	},
}

type groundworkClient interface {
	Precondition(context.Context, *config.Config) error
	Run(context.Context, *config.Config, app.Identity) (*provision.Report, error)
	Check(context.Context, *config.Config, app.Identity) (*provision.Report, error)
}

var newGroundwork = func(out, errOut io.Writer, logger ports.Logger) groundworkClient {
	return app.New(out, errOut, app.WithLogger(logger), app.WithVerbose(verbose))
}

var loadConfig = func(path string) (*config.Config, error) {
	return config.NewLoader(filesystem.NewRealFileSystem()).Load(path)
}

var promptIdentity = tui.PromptIdentity

var isInteractive = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	return execute(cmd, dryRun)
}

func execute(cmd *cobra.Command, checkOnly bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	client := newGroundwork(cmd.OutOrStdout(), cmd.ErrOrStderr(), newLogger(cmd.ErrOrStderr()))
	// an unsupported host fails before the operator is asked for anything
	if err := client.Precondition(ctx, cfg); err != nil {
		return err
	}

	identity, err := resolveIdentity(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
	if err != nil {
		return err
	}

	if checkOnly {
		_, err = client.Check(ctx, cfg, identity)
		return err
	}
	_, err = client.Run(ctx, cfg, identity)
	return err
}

// resolveIdentity combines flags with an optional terminal prompt. The prompt
// only appears on an interactive stdin and when a value is still missing.
func resolveIdentity(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config) (app.Identity, error) {
	identity := app.Identity{Name: nameFlag, Email: emailFlag}
	if identity.Name != "" && identity.Email != "" {
		return identity, nil
	}
	if noInput || !isInteractive() {
		return identity, nil
	}

	defaults := tui.Identity{Name: identity.Name, Email: identity.Email}
	if defaults.Name == "" {
		defaults.Name = cfg.Identity.Name
	}
	if defaults.Email == "" {
		defaults.Email = cfg.Identity.Email
	}

	answer, err := promptIdentity(ctx, in, out, defaults)
	if err != nil {
		return app.Identity{}, err
	}
	return app.Identity{Name: answer.Name, Email: answer.Email}, nil
}

func newLogger(w io.Writer) ports.Logger {
	level := ports.LevelWarn
	if verbose {
		level = ports.LevelDebug
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLogs),
		logging.WithNoColor(noColor),
	)
}
