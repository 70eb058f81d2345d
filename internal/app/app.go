// Package app wires configuration, adapters and providers into a provisioning run.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/groundwork/internal/adapters/command"
	"github.com/felixgeelhaar/groundwork/internal/adapters/filesystem"
	"github.com/felixgeelhaar/groundwork/internal/adapters/logging"
	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/hostfacts"
	"github.com/felixgeelhaar/groundwork/internal/domain/platform"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/provider/apt"
	"github.com/felixgeelhaar/groundwork/internal/provider/docs"
	"github.com/felixgeelhaar/groundwork/internal/provider/git"
	"github.com/felixgeelhaar/groundwork/internal/provider/layout"
	"github.com/felixgeelhaar/groundwork/internal/provider/shell"
	"github.com/felixgeelhaar/groundwork/internal/provider/ssh"
	"github.com/felixgeelhaar/groundwork/internal/provider/tools"
	"github.com/felixgeelhaar/groundwork/internal/tui"
)

// Provider contributes an ordered slice of steps to a run.
type Provider interface {
	Name() string
	Steps(cfg *config.Config) []provision.Step
}

// Detector reports the host platform.
type Detector interface {
	Detect() (*platform.Platform, error)
}

// Identity holds the operator-supplied values used by git and ssh steps.
type Identity struct {
	Name  string
	Email string
}

// Groundwork is the main application orchestrator.
type Groundwork struct {
	out      io.Writer
	errOut   io.Writer
	runner   ports.CommandRunner
	resolver ports.PathResolver
	fs       ports.FileSystem
	logger   ports.Logger
	detector Detector
	now      func() time.Time
	verbose  bool
}

// Option configures Groundwork.
type Option func(*Groundwork)

// WithRunner replaces the command runner. If the runner can also resolve
// executables it becomes the path resolver.
func WithRunner(runner ports.CommandRunner) Option {
	return func(g *Groundwork) {
		g.runner = runner
		if resolver, ok := runner.(ports.PathResolver); ok {
			g.resolver = resolver
		}
	}
}

// WithFileSystem replaces the filesystem adapter.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(g *Groundwork) {
		g.fs = fs
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger ports.Logger) Option {
	return func(g *Groundwork) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDetector replaces platform detection.
func WithDetector(d Detector) Option {
	return func(g *Groundwork) {
		g.detector = d
	}
}

// WithPlatform pins the detected platform.
func WithPlatform(p *platform.Platform) Option {
	return WithDetector(fixedPlatform{p: p})
}

// WithClock overrides the time source for index freshness and document dates.
func WithClock(now func() time.Time) Option {
	return func(g *Groundwork) {
		g.now = now
	}
}

// WithVerbose prints a line as each step starts.
func WithVerbose(verbose bool) Option {
	return func(g *Groundwork) {
		g.verbose = verbose
	}
}

// New creates a Groundwork application backed by the real host.
func New(out, errOut io.Writer, opts ...Option) *Groundwork {
	// command output is parsed, so keep it unlocalized
	runner := command.NewRealRunner().WithEnv("LC_ALL=C")
	fs := filesystem.NewRealFileSystem()

	g := &Groundwork{
		out:      out,
		errOut:   errOut,
		runner:   runner,
		resolver: runner,
		fs:       fs,
		logger:   logging.NewNopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.detector == nil {
		g.detector = platform.NewDetector(g.fs)
	}
	return g
}

// Providers returns the providers in execution order.
func (g *Groundwork) Providers(cfg *config.Config) []Provider {
	probes := make([]hostfacts.Probe, 0, len(cfg.Docs.Tools))
	for _, t := range cfg.Docs.Tools {
		probes = append(probes, hostfacts.Probe{Name: t.Name, Args: t.Args})
	}
	collector := hostfacts.NewCollector(g.runner, g.resolver, g.fs, probes).WithLogger(g.logger)

	return []Provider{
		apt.NewProvider(g.runner, g.fs).WithClock(g.now),
		tools.NewProvider(g.runner, g.resolver, g.fs),
		layout.NewProvider(g.fs),
		docs.NewProvider(collector, g.fs).WithClock(g.now),
		shell.NewProvider(g.fs),
		git.NewProvider(g.runner),
		ssh.NewProvider(g.fs),
	}
}

// BuildSteps flattens every provider's steps into the run order.
func (g *Groundwork) BuildSteps(cfg *config.Config) []provision.Step {
	var steps []provision.Step
	for _, p := range g.Providers(cfg) {
		steps = append(steps, p.Steps(cfg)...)
	}
	return steps
}

// Run checks the platform precondition, then provisions the host.
// A precondition failure returns before any step runs and with a nil report.
func (g *Groundwork) Run(ctx context.Context, cfg *config.Config, identity Identity) (*provision.Report, error) {
	return g.run(ctx, cfg, identity, false)
}

// Check runs every step's check without applying anything.
func (g *Groundwork) Check(ctx context.Context, cfg *config.Config, identity Identity) (*provision.Report, error) {
	return g.run(ctx, cfg, identity, true)
}

func (g *Groundwork) run(ctx context.Context, cfg *config.Config, identity Identity, checkOnly bool) (*provision.Report, error) {
	if err := g.Precondition(ctx, cfg); err != nil {
		return nil, err
	}

	values := Seed(cfg, identity)
	reporter := tui.NewStatusReporter(g.out, g.errOut).WithVerbose(g.verbose)
	provisioner := provision.NewProvisioner(
		provision.WithReporter(reporter),
		provision.WithLogger(g.logger),
		provision.WithCheckOnly(checkOnly),
	)

	report, err := provisioner.Run(ctx, g.BuildSteps(cfg), values)

	if key := values.String(provision.KeySSHPublicKey); key != "" {
		reporter.PublicKey(cfg.SSH.Host, values.String(provision.KeySSHPublicPath), key)
	}
	return report, err
}

// Precondition detects the platform and rejects hosts outside the configured
// families. Callers may run it before collecting operator input; Run and Check
// always repeat it.
func (g *Groundwork) Precondition(ctx context.Context, cfg *config.Config) error {
	p, err := g.detector.Detect()
	if err != nil {
		return fmt.Errorf("failed to detect platform: %w", err)
	}
	if err := platform.Require(p, cfg.Platform.Families); err != nil {
		return err
	}

	g.logger.Info(ctx, "platform detected",
		ports.F("platform", p.String()),
		ports.F("release", p.Release().Describe()))
	return nil
}

// Seed creates the run values from the supplied identity, falling back to the
// identity in the configuration for fields left empty.
func Seed(cfg *config.Config, identity Identity) *provision.Values {
	name := identity.Name
	if name == "" {
		name = cfg.Identity.Name
	}
	email := identity.Email
	if email == "" {
		email = cfg.Identity.Email
	}

	values := provision.NewValues()
	values.Set(provision.KeyIdentityName, name)
	values.Set(provision.KeyIdentityEmail, email)
	return values
}

type fixedPlatform struct {
	p *platform.Platform
}

func (f fixedPlatform) Detect() (*platform.Platform, error) {
	return f.p, nil
}
