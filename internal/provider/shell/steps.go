// Package shell maintains the marker-guarded block of aliases and functions
// in the operator's shell profile.
package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/validation"
)

// Section names the managed block; its start marker is the idempotency guard.
const Section = "aliases"

// ProfileStep appends the managed block to a shell profile.
type ProfileStep struct {
	path      string
	aliases   []config.Alias
	functions []config.Function
	fs        ports.FileSystem
}

// NewProfileStep creates a new ProfileStep.
func NewProfileStep(path string, aliases []config.Alias, functions []config.Function, fs ports.FileSystem) *ProfileStep {
	return &ProfileStep{path: path, aliases: aliases, functions: functions, fs: fs}
}

// Name returns the step name.
func (s *ProfileStep) Name() string {
	return "shell:profile"
}

// Check reports satisfied when the marker is already in the profile.
func (s *ProfileStep) Check(_ provision.RunContext) (provision.Status, error) {
	content, err := s.read()
	if err != nil {
		return "", err
	}
	if HasManagedBlock(content, Section) {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply writes the block, keeping the rest of the profile intact.
func (s *ProfileStep) Apply(_ provision.RunContext) error {
	for _, a := range s.aliases {
		if err := validation.ValidateShellName(a.Name); err != nil {
			return fmt.Errorf("alias: %w", err)
		}
	}
	for _, f := range s.functions {
		if err := validation.ValidateShellName(f.Name); err != nil {
			return fmt.Errorf("function: %w", err)
		}
	}

	content, err := s.read()
	if err != nil {
		return err
	}

	mode := os.FileMode(0o644)
	if info, err := s.fs.GetFileInfo(s.path); err == nil {
		mode = info.Mode.Perm()
	}

	updated := WriteManagedBlock(content, Section, RenderBlock(s.aliases, s.functions))
	if err := s.fs.WriteFile(s.path, []byte(updated), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Describe summarizes the applied change.
func (s *ProfileStep) Describe() string {
	return fmt.Sprintf("added %d aliases and %d functions to %s", len(s.aliases), len(s.functions), s.path)
}

func (s *ProfileStep) read() (string, error) {
	data, err := s.fs.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return string(data), nil
}

// Provider turns shell configuration into the profile step.
type Provider struct {
	fs ports.FileSystem
}

// NewProvider creates a new shell Provider.
func NewProvider(fs ports.FileSystem) *Provider {
	return &Provider{fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "shell"
}

// Steps returns the profile step.
func (p *Provider) Steps(cfg *config.Config) []provision.Step {
	return []provision.Step{NewProfileStep(cfg.ProfilePath(), cfg.Shell.Aliases, cfg.Shell.Functions, p.fs)}
}

var (
	_ provision.Step      = (*ProfileStep)(nil)
	_ provision.Describer = (*ProfileStep)(nil)
)
