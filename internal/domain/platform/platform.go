// Package platform detects the host platform and enforces the pre-flight
// precondition that must hold before any provisioning step runs.
package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// OS represents the operating system type.
type OS string

const (
	// OSDarwin is macOS.
	OSDarwin OS = "darwin"
	// OSLinux is Linux (native or WSL).
	OSLinux OS = "linux"
	// OSWindows is Windows.
	OSWindows OS = "windows"
	// OSUnknown is an unsupported OS.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a native OS environment.
	EnvNative Environment = "native"
	// EnvWSL is Windows Subsystem for Linux.
	EnvWSL Environment = "wsl"
	// EnvContainer is a Docker or containerd container.
	EnvContainer Environment = "container"
)

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	release     OSRelease
}

// New creates a Platform with specified values.
func New(os OS, arch string, env Environment, release OSRelease) *Platform {
	return &Platform{
		os:          os,
		arch:        arch,
		environment: env,
		release:     release,
	}
}

// OS returns the operating system.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the CPU architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// Release returns the parsed os-release data (empty off Linux).
func (p *Platform) Release() OSRelease {
	return p.release
}

// IsLinux returns true if running on Linux (native or WSL).
func (p *Platform) IsLinux() bool {
	return p.os == OSLinux
}

// String returns a human-readable description.
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}
	if p.environment != EnvNative && p.environment != "" {
		parts = append(parts, string(p.environment))
	}
	if p.release.ID != "" {
		parts = append(parts, p.release.ID)
	}
	return strings.Join(parts, "/")
}

// Detector inspects the running host.
type Detector struct {
	fs   ports.FileSystem
	goos string
	arch string
}

// NewDetector creates a Detector reading host files through fs.
func NewDetector(fs ports.FileSystem) *Detector {
	return &Detector{fs: fs, goos: runtime.GOOS, arch: runtime.GOARCH}
}

// Detect returns the current platform.
func (d *Detector) Detect() (*Platform, error) {
	p := &Platform{arch: d.arch, environment: EnvNative}

	switch d.goos {
	case "darwin":
		p.os = OSDarwin
	case "linux":
		p.os = OSLinux
	case "windows":
		p.os = OSWindows
	default:
		p.os = OSUnknown
	}

	if p.os != OSLinux {
		return p, nil
	}

	if d.fs.Exists(OSReleasePath) {
		data, err := d.fs.ReadFile(OSReleasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", OSReleasePath, err)
		}
		rel, err := ParseOSRelease(data)
		if err != nil {
			return nil, err
		}
		p.release = rel
	}

	p.environment = d.detectEnvironment()
	return p, nil
}

func (d *Detector) detectEnvironment() Environment {
	if data, err := d.fs.ReadFile("/proc/version"); err == nil {
		version := strings.ToLower(string(data))
		if strings.Contains(version, "microsoft") || strings.Contains(version, "wsl") {
			return EnvWSL
		}
	}

	if d.fs.Exists("/.dockerenv") {
		return EnvContainer
	}
	if data, err := d.fs.ReadFile("/proc/1/cgroup"); err == nil {
		cgroup := string(data)
		if strings.Contains(cgroup, "docker") || strings.Contains(cgroup, "containerd") {
			return EnvContainer
		}
	}

	return EnvNative
}

// Require checks the pre-flight precondition: a Linux host whose os-release
// ID or ID_LIKE names one of the supported families.
func Require(p *Platform, families []string) error {
	if p == nil {
		return provision.NewPreconditionError("platform could not be detected", "")
	}

	if !p.IsLinux() {
		return provision.NewPreconditionError(
			fmt.Sprintf("unsupported operating system %q", p.os),
			"groundwork provisions Linux workstations that use apt.",
		)
	}

	supported := make(map[string]bool, len(families))
	for _, f := range families {
		supported[strings.ToLower(strings.TrimSpace(f))] = true
	}

	for _, family := range p.release.Families() {
		if supported[family] {
			return nil
		}
	}

	found := p.release.ID
	if found == "" {
		found = "unknown"
	}
	return provision.NewPreconditionError(
		fmt.Sprintf("unsupported operating system family %q", found),
		fmt.Sprintf("Supported families: %s.", strings.Join(families, ", ")),
	)
}
