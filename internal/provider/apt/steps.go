package apt

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/provider/commandutil"
	"github.com/felixgeelhaar/groundwork/internal/validation"
)

// ListsDir is where apt keeps downloaded package indexes.
const ListsDir = "/var/lib/apt/lists"

// RefreshStep refreshes the package index when it is older than an interval.
// After a successful update it records the time in its own stamp file, so
// convergence does not depend on apt hooks touching anything.
type RefreshStep struct {
	stampPath string
	interval  time.Duration
	runner    ports.CommandRunner
	fs        ports.FileSystem
	now       func() time.Time
}

// NewRefreshStep creates a new RefreshStep.
func NewRefreshStep(stampPath string, interval time.Duration, runner ports.CommandRunner, fs ports.FileSystem) *RefreshStep {
	return &RefreshStep{
		stampPath: stampPath,
		interval:  interval,
		runner:    runner,
		fs:        fs,
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (s *RefreshStep) WithClock(now func() time.Time) *RefreshStep {
	s.now = now
	return s
}

// Name returns the step name.
func (s *RefreshStep) Name() string {
	return "apt:refresh"
}

// Check reports satisfied when the index was refreshed within the interval.
func (s *RefreshStep) Check(_ provision.RunContext) (provision.Status, error) {
	newest := s.stampTime()
	if info, err := s.fs.GetFileInfo(ListsDir); err == nil && info.ModTime.After(newest) {
		newest = info.ModTime
	}

	if !newest.IsZero() && s.now().Sub(newest) < s.interval {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply runs apt-get update and stamps the refresh time.
func (s *RefreshStep) Apply(ctx provision.RunContext) error {
	if err := run(ctx, s.runner, "update"); err != nil {
		return err
	}
	if s.stampPath == "" {
		return nil
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.stampPath), 0o755); err != nil {
		return fmt.Errorf("failed to create stamp directory: %w", err)
	}
	stamp := s.now().UTC().Format(time.RFC3339) + "\n"
	if err := s.fs.WriteFile(s.stampPath, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("failed to write refresh stamp: %w", err)
	}
	return nil
}

// stampTime prefers the time recorded in the stamp and falls back to its
// modification time for stamps written by other tools.
func (s *RefreshStep) stampTime() time.Time {
	if s.stampPath == "" {
		return time.Time{}
	}
	info, err := s.fs.GetFileInfo(s.stampPath)
	if err != nil {
		return time.Time{}
	}
	if data, err := s.fs.ReadFile(s.stampPath); err == nil {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data))); err == nil {
			return t
		}
	}
	return info.ModTime
}

// Describe summarizes the applied change.
func (s *RefreshStep) Describe() string {
	return "refreshed package index"
}

// UpgradeStep upgrades every installed package that has a newer version.
type UpgradeStep struct {
	runner ports.CommandRunner
}

// NewUpgradeStep creates a new UpgradeStep.
func NewUpgradeStep(runner ports.CommandRunner) *UpgradeStep {
	return &UpgradeStep{runner: runner}
}

// Name returns the step name.
func (s *UpgradeStep) Name() string {
	return "apt:upgrade"
}

// Check reports satisfied when apt lists no upgradable packages.
func (s *UpgradeStep) Check(ctx provision.RunContext) (provision.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "apt", "list", "--upgradable")
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", fmt.Errorf("apt list --upgradable failed: %s", strings.TrimSpace(result.Stderr))
	}
	if CountUpgradable(result.Stdout) == 0 {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply runs a non-interactive apt-get upgrade.
func (s *UpgradeStep) Apply(ctx provision.RunContext) error {
	return run(ctx, s.runner, "upgrade", "-y")
}

// Describe summarizes the applied change.
func (s *UpgradeStep) Describe() string {
	return "upgraded system packages"
}

// CountUpgradable counts package lines in `apt list --upgradable` output.
func CountUpgradable(output string) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "[upgradable from") {
			n++
		}
	}
	return n
}

// PackageStep installs a single package.
type PackageStep struct {
	name   string
	runner ports.CommandRunner
}

// NewPackageStep creates a new PackageStep.
func NewPackageStep(name string, runner ports.CommandRunner) *PackageStep {
	return &PackageStep{name: name, runner: runner}
}

// Name returns the step name.
func (s *PackageStep) Name() string {
	return "apt:package:" + s.name
}

// Check determines if the package is already installed.
func (s *PackageStep) Check(ctx provision.RunContext) (provision.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "dpkg-query", "-W", "-f=${db:Status-Status}", s.name)
	if err != nil {
		return "", err
	}

	// dpkg-query exits 1 for unknown packages
	if !result.Success() {
		return provision.StatusNeedsApply, nil
	}
	if strings.TrimSpace(result.Stdout) == "installed" {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply installs the package.
func (s *PackageStep) Apply(ctx provision.RunContext) error {
	if err := validation.ValidatePackageName(s.name); err != nil {
		return fmt.Errorf("invalid package name: %w", err)
	}
	return run(ctx, s.runner, "install", "-y", s.name)
}

// Describe summarizes the applied change.
func (s *PackageStep) Describe() string {
	return "installed " + s.name
}

// run invokes apt-get through sudo without any prompts. DEBIAN_FRONTEND goes
// on the sudo command line because sudo resets the caller's environment.
func run(ctx provision.RunContext, runner ports.CommandRunner, args ...string) error {
	argv := append([]string{"DEBIAN_FRONTEND=noninteractive", "apt-get"}, args...)
	_, err := commandutil.Run(ctx.Context(), runner, "apt-get "+strings.Join(args, " "), "sudo", argv...)
	return err
}

var (
	_ provision.Step      = (*RefreshStep)(nil)
	_ provision.Describer = (*RefreshStep)(nil)
	_ provision.Step      = (*UpgradeStep)(nil)
	_ provision.Describer = (*UpgradeStep)(nil)
	_ provision.Step      = (*PackageStep)(nil)
	_ provision.Describer = (*PackageStep)(nil)
)
