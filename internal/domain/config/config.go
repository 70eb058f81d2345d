// Package config holds the provisioning configuration: which packages,
// tools, directories, documents and profile entries make up a workstation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/validation"
)

// Documentation policies.
const (
	// DocsCreateOnce writes a document only when the file is absent.
	DocsCreateOnce = "create-once"
	// DocsRefresh rewrites a document whenever the rendered content differs.
	DocsRefresh = "refresh"
)

// Config is the complete provisioning configuration.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace" toml:"workspace"`
	Docs      DocsConfig      `yaml:"docs" toml:"docs"`
	Apt       AptConfig       `yaml:"apt" toml:"apt"`
	Tools     []ToolConfig    `yaml:"tools" toml:"tools"`
	Shell     ShellConfig     `yaml:"shell" toml:"shell"`
	Identity  IdentityConfig  `yaml:"identity" toml:"identity"`
	SSH       SSHConfig       `yaml:"ssh" toml:"ssh"`
	Platform  PlatformConfig  `yaml:"platform" toml:"platform"`
}

// WorkspaceConfig describes the categorized directory tree.
type WorkspaceConfig struct {
	Base        string   `yaml:"base" toml:"base"`
	Directories []string `yaml:"directories" toml:"directories"`
}

// DocsConfig describes the generated documentation files.
type DocsConfig struct {
	Dir    string        `yaml:"dir" toml:"dir"`
	Policy string        `yaml:"policy" toml:"policy"`
	Tools  []ProbeConfig `yaml:"tools" toml:"tools"`
}

// ProbeConfig names a tool whose version is recorded in the documents.
type ProbeConfig struct {
	Name string   `yaml:"name" toml:"name"`
	Args []string `yaml:"args,omitempty" toml:"args,omitempty"`
}

// AptConfig configures the package manager steps.
type AptConfig struct {
	Packages        []string `yaml:"packages" toml:"packages"`
	Upgrade         bool     `yaml:"upgrade" toml:"upgrade"`
	RefreshInterval string   `yaml:"refresh_interval" toml:"refresh_interval"`
	StampPath       string   `yaml:"stamp_path" toml:"stamp_path"`
}

// ToolConfig is a tool installed outside the package list. It counts as
// present when Name resolves on PATH or any of Paths exists; otherwise each
// Install argv runs in order. Paths covers installers that target a directory
// the current session does not have on PATH yet.
type ToolConfig struct {
	Name    string     `yaml:"name" toml:"name"`
	Paths   []string   `yaml:"paths,omitempty" toml:"paths,omitempty"`
	Install [][]string `yaml:"install" toml:"install"`
}

// ShellConfig configures the managed profile block.
type ShellConfig struct {
	Profile   string     `yaml:"profile" toml:"profile"`
	Aliases   []Alias    `yaml:"aliases" toml:"aliases"`
	Functions []Function `yaml:"functions" toml:"functions"`
}

// Alias is a single shell alias.
type Alias struct {
	Name    string `yaml:"name" toml:"name"`
	Command string `yaml:"command" toml:"command"`
}

// Function is a shell function; Body is the text between the braces.
type Function struct {
	Name string `yaml:"name" toml:"name"`
	Body string `yaml:"body" toml:"body"`
}

// IdentityConfig supplies defaults for the values otherwise prompted for.
type IdentityConfig struct {
	Name  string `yaml:"name" toml:"name"`
	Email string `yaml:"email" toml:"email"`
}

// SSHConfig configures keypair generation.
type SSHConfig struct {
	KeyPath string `yaml:"key_path" toml:"key_path"`
	Host    string `yaml:"host" toml:"host"`
}

// PlatformConfig lists the os-release families that may be provisioned.
type PlatformConfig struct {
	Families []string `yaml:"families" toml:"families"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Base: "~/dev",
			Directories: []string{
				"active",
				"learning",
				"archive",
				"forks",
				"scripts",
				"patterns/architecture",
				"patterns/testing",
				"patterns/deployment",
				"patterns/security",
			},
		},
		Docs: DocsConfig{
			Dir:    "~/dev",
			Policy: DocsCreateOnce,
			Tools: []ProbeConfig{
				{Name: "git"},
				{Name: "python3"},
				{Name: "node"},
				{Name: "go", Args: []string{"version"}},
				{Name: "docker"},
				{Name: "tmux", Args: []string{"-V"}},
			},
		},
		Apt: AptConfig{
			Packages: []string{
				"build-essential",
				"git",
				"curl",
				"wget",
				"tmux",
				"htop",
				"jq",
				"tree",
				"ripgrep",
				"python3-pip",
			},
			Upgrade:         true,
			RefreshInterval: "24h",
			StampPath:       filepath.Join(xdg.StateHome, AppName, "apt-refresh"),
		},
		Tools: []ToolConfig{
			{
				Name: "docker",
				Install: [][]string{
					{"sudo", "apt-get", "install", "-y", "docker.io"},
					{"sh", "-c", `sudo usermod -aG docker "$USER"`},
				},
			},
			{
				Name:  "uv",
				Paths: []string{"~/.local/bin/uv"},
				Install: [][]string{
					{"sh", "-c", "curl -LsSf https://astral.sh/uv/install.sh | sh"},
				},
			},
		},
		Shell: ShellConfig{
			Profile: "~/.bashrc",
			Aliases: []Alias{
				{Name: "ll", Command: "ls -alF"},
				{Name: "dev", Command: "cd ~/dev"},
				{Name: "active", Command: "cd ~/dev/active"},
				{Name: "gs", Command: "git status -sb"},
				{Name: "gl", Command: "git log --oneline --graph --decorate -20"},
			},
			Functions: []Function{
				{Name: "mkcd", Body: `mkdir -p "$1" && cd "$1"`},
				{Name: "newproject", Body: `mkdir -p ~/dev/active/"$1" && cd ~/dev/active/"$1" && git init`},
			},
		},
		SSH: SSHConfig{
			KeyPath: "~/.ssh/id_ed25519",
			Host:    "github.com",
		},
		Platform: PlatformConfig{
			Families: []string{"debian", "ubuntu"},
		},
	}
}

// RefreshInterval returns the parsed package index refresh interval.
func (c *Config) RefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.Apt.RefreshInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// AptStampPath returns the expanded refresh stamp path.
func (c *Config) AptStampPath() string {
	return ports.ExpandPath(c.Apt.StampPath)
}

// WorkspaceBase returns the expanded base directory.
func (c *Config) WorkspaceBase() string {
	return ports.ExpandPath(c.Workspace.Base)
}

// WorkspaceDirectories returns the expanded absolute category directories.
func (c *Config) WorkspaceDirectories() []string {
	base := c.WorkspaceBase()
	dirs := make([]string, 0, len(c.Workspace.Directories))
	for _, d := range c.Workspace.Directories {
		dirs = append(dirs, filepath.Join(base, d))
	}
	return dirs
}

// DocsDir returns the expanded documentation directory.
func (c *Config) DocsDir() string {
	return ports.ExpandPath(c.Docs.Dir)
}

// ProfilePath returns the expanded shell profile path.
func (c *Config) ProfilePath() string {
	return ports.ExpandPath(c.Shell.Profile)
}

// SSHKeyPath returns the expanded private key path.
func (c *Config) SSHKeyPath() string {
	return ports.ExpandPath(c.SSH.KeyPath)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate(path string) error {
	var errs ErrorList

	if err := validation.ValidatePath(c.Workspace.Base); err != nil {
		errs.AddValidation("workspace.base", err.Error(), "Use an absolute path or one starting with ~/.")
	}
	for _, dir := range c.Workspace.Directories {
		if filepath.IsAbs(dir) {
			errs.AddValidation("workspace.directories", fmt.Sprintf("%q must be relative to workspace.base", dir), "")
			continue
		}
		if err := validation.ValidatePathWithBase(dir, c.WorkspaceBase()); err != nil {
			errs.AddValidation("workspace.directories", err.Error(), "")
		}
	}

	if err := validation.ValidatePath(c.Docs.Dir); err != nil {
		errs.AddValidation("docs.dir", err.Error(), "")
	}
	if c.Docs.Policy != DocsCreateOnce && c.Docs.Policy != DocsRefresh {
		errs.AddValidation("docs.policy", fmt.Sprintf("unknown policy %q", c.Docs.Policy),
			fmt.Sprintf("Use %q or %q.", DocsCreateOnce, DocsRefresh))
	}
	for _, probe := range c.Docs.Tools {
		if err := validation.ValidateCommandName(probe.Name); err != nil {
			errs.AddValidation("docs.tools", err.Error(), "")
		}
	}

	for _, pkg := range c.Apt.Packages {
		if err := validation.ValidatePackageName(pkg); err != nil {
			errs.AddValidation("apt.packages", err.Error(), "")
		}
	}
	if d, err := time.ParseDuration(c.Apt.RefreshInterval); err != nil || d < 0 {
		errs.AddValidation("apt.refresh_interval", fmt.Sprintf("invalid duration %q", c.Apt.RefreshInterval),
			`Use a Go duration such as "24h" or "30m".`)
	}

	for _, tool := range c.Tools {
		if err := validation.ValidateCommandName(tool.Name); err != nil {
			errs.AddValidation("tools", err.Error(), "")
		}
		for _, path := range tool.Paths {
			if err := validation.ValidatePath(path); err != nil {
				errs.AddValidation("tools", fmt.Sprintf("tool %q: %s", tool.Name, err.Error()), "")
			}
		}
		if len(tool.Install) == 0 {
			errs.AddValidation("tools", fmt.Sprintf("tool %q has no install commands", tool.Name), "")
		}
		for _, argv := range tool.Install {
			if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
				errs.AddValidation("tools", fmt.Sprintf("tool %q has an empty install command", tool.Name), "")
			}
		}
	}

	if err := validation.ValidatePath(c.Shell.Profile); err != nil {
		errs.AddValidation("shell.profile", err.Error(), "")
	}
	for _, a := range c.Shell.Aliases {
		if err := validation.ValidateShellName(a.Name); err != nil {
			errs.AddValidation("shell.aliases", err.Error(), "")
		}
		if strings.ContainsAny(a.Command, "\n\r") {
			errs.AddValidation("shell.aliases", fmt.Sprintf("alias %q spans multiple lines", a.Name), "Use a function instead.")
		}
	}
	for _, f := range c.Shell.Functions {
		if err := validation.ValidateShellName(f.Name); err != nil {
			errs.AddValidation("shell.functions", err.Error(), "")
		}
	}

	if err := validation.ValidateGitConfigValue(c.Identity.Name); err != nil {
		errs.AddValidation("identity.name", err.Error(), "")
	}
	if c.Identity.Email != "" {
		if err := validation.ValidateEmail(c.Identity.Email); err != nil {
			errs.AddValidation("identity.email", err.Error(), "")
		}
	}

	if err := validation.ValidatePath(c.SSH.KeyPath); err != nil {
		errs.AddValidation("ssh.key_path", err.Error(), "")
	}
	if err := validation.ValidateHostname(c.SSH.Host); err != nil {
		errs.AddValidation("ssh.host", err.Error(), "")
	}

	if len(c.Platform.Families) == 0 {
		errs.AddValidation("platform.families", "at least one family is required", `The defaults are "debian" and "ubuntu".`)
	}

	return errs.AsError(path)
}
