// Package git configures the global git identity from operator input.
package git

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/provider/commandutil"
	"github.com/felixgeelhaar/groundwork/internal/validation"
)

// IdentityStep sets user.name and user.email in the global git config.
// It defers when either value was not supplied.
type IdentityStep struct {
	runner ports.CommandRunner
	reason string
}

// NewIdentityStep creates a new IdentityStep.
func NewIdentityStep(runner ports.CommandRunner) *IdentityStep {
	return &IdentityStep{runner: runner}
}

// Name returns the step name.
func (s *IdentityStep) Name() string {
	return "git:identity"
}

// Check compares the supplied identity with the current global config. A host
// without git yet, as seen by a check-only run before packages are installed,
// needs the identity applied.
func (s *IdentityStep) Check(ctx provision.RunContext) (provision.Status, error) {
	name, email := identity(ctx)
	if name == "" || email == "" {
		s.reason = missingReason(name, email)
		return provision.StatusDeferred, nil
	}

	currentName, err := s.get(ctx, "user.name")
	if commandutil.IsCommandNotFound(err) {
		return provision.StatusNeedsApply, nil
	}
	if err != nil {
		return "", err
	}
	currentEmail, err := s.get(ctx, "user.email")
	if err != nil {
		return "", err
	}
	if currentName == name && currentEmail == email {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply writes both values.
func (s *IdentityStep) Apply(ctx provision.RunContext) error {
	name, email := identity(ctx)
	if err := validation.ValidateGitConfigValue(name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	for _, kv := range [][2]string{{"user.name", name}, {"user.email", email}} {
		if _, err := commandutil.Run(ctx.Context(), s.runner, "git config "+kv[0], "git", "config", "--global", kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Describe summarizes the applied change.
func (s *IdentityStep) Describe() string {
	return "configured git user.name and user.email"
}

// DeferReason explains which input was missing.
func (s *IdentityStep) DeferReason() string {
	return s.reason
}

// get returns a global config value; unset keys yield "".
func (s *IdentityStep) get(ctx provision.RunContext, key string) (string, error) {
	result, err := s.runner.Run(ctx.Context(), "git", "config", "--global", "--get", key)
	if err != nil {
		return "", err
	}
	switch result.ExitCode {
	case 0:
		return strings.TrimSpace(result.Stdout), nil
	case 1:
		return "", nil
	default:
		return "", fmt.Errorf("git config --get %s failed: %s", key, strings.TrimSpace(result.Stderr))
	}
}

func identity(ctx provision.RunContext) (name, email string) {
	return ctx.Values().String(provision.KeyIdentityName), ctx.Values().String(provision.KeyIdentityEmail)
}

func missingReason(name, email string) string {
	switch {
	case name == "" && email == "":
		return "name and email not supplied"
	case name == "":
		return "name not supplied"
	default:
		return "email not supplied"
	}
}

// Provider turns identity configuration into the git step.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new git Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "git"
}

// Steps returns the identity step.
func (p *Provider) Steps(_ *config.Config) []provision.Step {
	return []provision.Step{NewIdentityStep(p.runner)}
}

var (
	_ provision.Step      = (*IdentityStep)(nil)
	_ provision.Describer = (*IdentityStep)(nil)
	_ provision.Deferrer  = (*IdentityStep)(nil)
)
