// Package layout creates the categorized workspace directory tree.
package layout

import (
	"fmt"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// TreeStep ensures every directory of the workspace tree exists.
type TreeStep struct {
	base    string
	dirs    []string
	fs      ports.FileSystem
	created int
}

// NewTreeStep creates a TreeStep for absolute directory paths under base.
func NewTreeStep(base string, dirs []string, fs ports.FileSystem) *TreeStep {
	return &TreeStep{base: base, dirs: dirs, fs: fs}
}

// Name returns the step name.
func (s *TreeStep) Name() string {
	return "layout:tree"
}

// Check reports satisfied when every directory exists.
func (s *TreeStep) Check(_ provision.RunContext) (provision.Status, error) {
	if len(s.Missing()) == 0 {
		return provision.StatusSatisfied, nil
	}
	return provision.StatusNeedsApply, nil
}

// Apply creates the missing directories.
func (s *TreeStep) Apply(_ provision.RunContext) error {
	s.created = 0
	for _, dir := range s.Missing() {
		if s.fs.Exists(dir) {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		s.created++
	}
	return nil
}

// Missing lists directories that do not exist yet.
func (s *TreeStep) Missing() []string {
	var missing []string
	for _, dir := range s.dirs {
		if !s.fs.IsDir(dir) {
			missing = append(missing, dir)
		}
	}
	return missing
}

// Describe summarizes the applied change.
func (s *TreeStep) Describe() string {
	return fmt.Sprintf("created %d directories under %s", s.created, s.base)
}

// Provider turns workspace configuration into the tree step.
type Provider struct {
	fs ports.FileSystem
}

// NewProvider creates a new layout Provider.
func NewProvider(fs ports.FileSystem) *Provider {
	return &Provider{fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "layout"
}

// Steps returns the single tree step.
func (p *Provider) Steps(cfg *config.Config) []provision.Step {
	return []provision.Step{NewTreeStep(cfg.WorkspaceBase(), cfg.WorkspaceDirectories(), p.fs)}
}

var (
	_ provision.Step      = (*TreeStep)(nil)
	_ provision.Describer = (*TreeStep)(nil)
)
