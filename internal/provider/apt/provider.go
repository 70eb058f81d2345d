// Package apt provides the package manager steps: index refresh, system
// upgrade and one install step per configured package.
package apt

import (
	"time"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// Provider turns apt configuration into steps.
type Provider struct {
	runner ports.CommandRunner
	fs     ports.FileSystem
	now    func() time.Time
}

// NewProvider creates a new apt Provider.
func NewProvider(runner ports.CommandRunner, fs ports.FileSystem) *Provider {
	return &Provider{runner: runner, fs: fs, now: time.Now}
}

// WithClock overrides the time source used to judge index freshness.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "apt"
}

// Steps returns refresh, optional upgrade, then one step per package.
func (p *Provider) Steps(cfg *config.Config) []provision.Step {
	steps := make([]provision.Step, 0, 2+len(cfg.Apt.Packages))
	steps = append(steps, NewRefreshStep(cfg.AptStampPath(), cfg.RefreshInterval(), p.runner, p.fs).WithClock(p.now))
	if cfg.Apt.Upgrade {
		steps = append(steps, NewUpgradeStep(p.runner))
	}
	for _, pkg := range cfg.Apt.Packages {
		steps = append(steps, NewPackageStep(pkg, p.runner))
	}
	return steps
}
