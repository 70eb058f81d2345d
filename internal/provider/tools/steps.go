// Package tools installs executables that do not come from the package list,
// using operator-configured install commands.
package tools

import (
	"fmt"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/provider/commandutil"
	"github.com/felixgeelhaar/groundwork/internal/validation"
)

// InstallStep installs one tool. The tool is present when its executable
// resolves on PATH or sits at one of its configured paths.
type InstallStep struct {
	tool     config.ToolConfig
	runner   ports.CommandRunner
	resolver ports.PathResolver
	fs       ports.FileSystem
}

// NewInstallStep creates a new InstallStep.
func NewInstallStep(tool config.ToolConfig, runner ports.CommandRunner, resolver ports.PathResolver, fs ports.FileSystem) *InstallStep {
	return &InstallStep{tool: tool, runner: runner, resolver: resolver, fs: fs}
}

// Name returns the step name.
func (s *InstallStep) Name() string {
	return "tool:" + s.tool.Name
}

// Check looks the executable up on PATH, then at the configured paths.
func (s *InstallStep) Check(_ provision.RunContext) (provision.Status, error) {
	if _, err := s.resolver.LookPath(s.tool.Name); err == nil {
		return provision.StatusSatisfied, nil
	}
	for _, path := range s.tool.Paths {
		if s.fs.Exists(ports.ExpandPath(path)) {
			return provision.StatusSatisfied, nil
		}
	}
	return provision.StatusNeedsApply, nil
}

// Apply runs each install command in order and stops at the first failure.
func (s *InstallStep) Apply(ctx provision.RunContext) error {
	if err := validation.ValidateCommandName(s.tool.Name); err != nil {
		return err
	}
	if len(s.tool.Install) == 0 {
		return fmt.Errorf("no install commands configured for %s", s.tool.Name)
	}

	for i, argv := range s.tool.Install {
		if len(argv) == 0 {
			return fmt.Errorf("install command %d for %s is empty", i+1, s.tool.Name)
		}
		what := fmt.Sprintf("install command %d for %s", i+1, s.tool.Name)
		if _, err := commandutil.Run(ctx.Context(), s.runner, what, argv[0], argv[1:]...); err != nil {
			return err
		}
	}
	return nil
}

// Describe summarizes the applied change.
func (s *InstallStep) Describe() string {
	return "installed " + s.tool.Name
}

// Provider turns tool configuration into steps.
type Provider struct {
	runner   ports.CommandRunner
	resolver ports.PathResolver
	fs       ports.FileSystem
}

// NewProvider creates a new tools Provider.
func NewProvider(runner ports.CommandRunner, resolver ports.PathResolver, fs ports.FileSystem) *Provider {
	return &Provider{runner: runner, resolver: resolver, fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "tools"
}

// Steps returns one install step per configured tool.
func (p *Provider) Steps(cfg *config.Config) []provision.Step {
	steps := make([]provision.Step, 0, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		steps = append(steps, NewInstallStep(tool, p.runner, p.resolver, p.fs))
	}
	return steps
}

var (
	_ provision.Step      = (*InstallStep)(nil)
	_ provision.Describer = (*InstallStep)(nil)
)
