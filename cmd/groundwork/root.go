package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/tui"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	jsonLogs  bool
	nameFlag  string
	emailFlag string
	noInput   bool

	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "Bootstrap a developer workstation, safely re-runnable",
	Long: `Groundwork converges a Debian or Ubuntu workstation to a known state:
system packages, developer tools, a categorized workspace tree, documentation
describing the host, shell aliases, git identity and an SSH key.

Every step checks the live system first and only acts when needed, so running
groundwork again is always safe. The first failing step stops the run.`,
	Args:          cobra.NoArgs,
	RunE:          runProvision,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/groundwork/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON to stderr")
	rootCmd.PersistentFlags().StringVar(&nameFlag, "name", "", "display name for git")
	rootCmd.PersistentFlags().StringVar(&emailFlag, "email", "", "email for git and the SSH key comment")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "never prompt, even on a terminal")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without changing anything")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var stepErr *provision.StepError
	if errors.As(err, &stepErr) {
		msg := stepErr.Message
		if stepErr.Step != "" {
			msg = fmt.Sprintf("%s: %s", stepErr.Step, msg)
		}
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		if verbose && stepErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", stepErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	tui.NewStatusReporter(io.Discard, w).Failure(formatError(err))
}
