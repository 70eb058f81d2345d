package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config prints the configuration a run would use: the built-in defaults
merged with the config file, if one is found. The output is a valid config
file and can be saved as a starting point.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", string(config.FormatYAML), "output format (yaml, toml)")
	_ = configCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(config.FormatYAML), string(config.FormatTOML)}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runConfig(cmd *cobra.Command, _ []string) error {
	format := config.Format(configFormat)
	if format != config.FormatYAML && format != config.FormatTOML {
		return fmt.Errorf("unsupported format %q: use yaml or toml", configFormat)
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	data, err := config.Encode(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
