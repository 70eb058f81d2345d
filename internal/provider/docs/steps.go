// Package docs writes the workspace documentation files rendered from host facts.
package docs

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/hostfacts"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/templates"
)

// Renderer produces document content for a run.
type Renderer struct {
	collector   *hostfacts.Collector
	base        string
	directories []string
	now         func() time.Time
}

// NewRenderer creates a Renderer. Directories are relative to base.
func NewRenderer(collector *hostfacts.Collector, base string, directories []string) *Renderer {
	return &Renderer{
		collector:   collector,
		base:        base,
		directories: directories,
		now:         time.Now,
	}
}

// WithClock overrides the time source used for the generated date.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	r.now = now
	return r
}

// volatile marks values that change between runs on an unchanged host: the
// generation date and disk usage.
const volatile = "\x00"

// Render renders the named document, gathering host facts once per run.
func (r *Renderer) Render(ctx provision.RunContext, name string) (string, error) {
	return r.render(ctx, name, false)
}

// Matches reports whether content equals a fresh rendering, ignoring the
// generation date and disk usage.
func (r *Renderer) Matches(ctx provision.RunContext, name, content string) (bool, error) {
	masked, err := r.render(ctx, name, true)
	if err != nil {
		return false, err
	}
	return matchMasked(content, masked), nil
}

func (r *Renderer) render(ctx provision.RunContext, name string, mask bool) (string, error) {
	facts := r.collector.Load(ctx)
	generated := r.now().Format("2006-01-02")
	if mask {
		masked := *facts
		masked.Disk = volatile
		facts = &masked
		generated = volatile
	}
	return templates.Render(name, templates.Data{
		Facts:       facts,
		Owner:       ctx.Values().String(provision.KeyIdentityName),
		Generated:   generated,
		Base:        r.base,
		Directories: r.directories,
	})
}

// matchMasked compares line by line; a masked line matches any text in place
// of its volatile values.
func matchMasked(content, masked string) bool {
	got := strings.Split(content, "\n")
	want := strings.Split(masked, "\n")
	if len(got) != len(want) {
		return false
	}
	for i, line := range want {
		if !strings.Contains(line, volatile) {
			if got[i] != line {
				return false
			}
			continue
		}
		parts := strings.Split(line, volatile)
		for j, part := range parts {
			parts[j] = regexp.QuoteMeta(part)
		}
		if !regexp.MustCompile("^" + strings.Join(parts, ".*") + "$").MatchString(got[i]) {
			return false
		}
	}
	return true
}

// DocumentStep writes one documentation file.
type DocumentStep struct {
	name     string
	path     string
	policy   string
	renderer *Renderer
	fs       ports.FileSystem
}

// NewDocumentStep creates a DocumentStep writing template name into dir.
func NewDocumentStep(name, dir, policy string, renderer *Renderer, fs ports.FileSystem) *DocumentStep {
	return &DocumentStep{
		name:     name,
		path:     filepath.Join(dir, name),
		policy:   policy,
		renderer: renderer,
		fs:       fs,
	}
}

// Name returns the step name.
func (s *DocumentStep) Name() string {
	return "docs:" + s.name
}

// Check reports satisfied when the file exists; under the refresh policy the
// content must also match a fresh rendering apart from its date and disk usage.
func (s *DocumentStep) Check(ctx provision.RunContext) (provision.Status, error) {
	if !s.fs.Exists(s.path) {
		return provision.StatusNeedsApply, nil
	}
	if s.policy != config.DocsRefresh {
		return provision.StatusSatisfied, nil
	}

	current, err := s.fs.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	same, err := s.renderer.Matches(ctx, s.name, string(current))
	if err != nil {
		return "", err
	}
	if same {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply renders the document and writes it.
func (s *DocumentStep) Apply(ctx provision.RunContext) error {
	content, err := s.renderer.Render(ctx, s.name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(s.path), err)
	}
	if err := s.fs.WriteFile(s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Describe summarizes the applied change.
func (s *DocumentStep) Describe() string {
	return "wrote " + s.path
}

// Provider turns documentation configuration into steps.
type Provider struct {
	collector *hostfacts.Collector
	fs        ports.FileSystem
	now       func() time.Time
}

// NewProvider creates a new docs Provider.
func NewProvider(collector *hostfacts.Collector, fs ports.FileSystem) *Provider {
	return &Provider{collector: collector, fs: fs, now: time.Now}
}

// WithClock overrides the time source for rendered documents.
func (p *Provider) WithClock(now func() time.Time) *Provider {
	p.now = now
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "docs"
}

// Steps returns one step per document, sharing a renderer.
func (p *Provider) Steps(cfg *config.Config) []provision.Step {
	renderer := NewRenderer(p.collector, cfg.WorkspaceBase(), cfg.Workspace.Directories).WithClock(p.now)

	names := templates.Names()
	steps := make([]provision.Step, 0, len(names))
	for _, name := range names {
		steps = append(steps, NewDocumentStep(name, cfg.DocsDir(), cfg.Docs.Policy, renderer, p.fs))
	}
	return steps
}

var (
	_ provision.Step      = (*DocumentStep)(nil)
	_ provision.Describer = (*DocumentStep)(nil)
)
