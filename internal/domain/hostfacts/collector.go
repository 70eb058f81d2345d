package hostfacts

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/groundwork/internal/domain/platform"
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
	"github.com/felixgeelhaar/groundwork/internal/ports"
)

// routeProbeTarget is any routable address; only the chosen route matters.
const routeProbeTarget = "1.1.1.1"

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Probe describes how to ask a tool for its version.
type Probe struct {
	Name string
	Args []string
}

// Collector gathers Facts through the command and filesystem ports.
type Collector struct {
	runner   ports.CommandRunner
	resolver ports.PathResolver
	fs       ports.FileSystem
	probes   []Probe
	logger   ports.Logger
}

// NewCollector creates a Collector. Probes with no Args use --version.
func NewCollector(runner ports.CommandRunner, resolver ports.PathResolver, fs ports.FileSystem, probes []Probe) *Collector {
	return &Collector{
		runner:   runner,
		resolver: resolver,
		fs:       fs,
		probes:   probes,
	}
}

// WithLogger sets the logger used to record failed probes.
func (c *Collector) WithLogger(logger ports.Logger) *Collector {
	c.logger = logger
	return c
}

// Load returns the facts cached in the run's values, gathering and caching
// them on first use.
func (c *Collector) Load(rc provision.RunContext) *Facts {
	if facts, ok := FromValues(rc.Values()); ok {
		return facts
	}
	facts := c.Gather(rc.Context())
	rc.Values().Set(provision.KeyHostFacts, facts)
	return facts
}

// Gather probes the host. Individual probe failures become Unknown.
func (c *Collector) Gather(ctx context.Context) *Facts {
	facts := &Facts{
		Hostname: c.hostname(ctx),
		Kernel:   c.commandLine(ctx, "uname", "-r"),
		Arch:     c.commandLine(ctx, "uname", "-m"),
		CPU:      c.cpu(),
		Memory:   c.memory(),
		Disk:     c.disk(ctx),
	}
	facts.OSID, facts.OSPretty = c.osRelease()
	facts.Interface, facts.IPAddress = c.route(ctx)

	for _, p := range c.probes {
		facts.Tools = append(facts.Tools, ToolVersion{Name: p.Name, Version: c.toolVersion(ctx, p)})
	}
	return facts
}

func (c *Collector) hostname(ctx context.Context) string {
	if name := c.commandLine(ctx, "hostname"); name != Unknown {
		return name
	}
	if data, err := c.fs.ReadFile("/etc/hostname"); err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			return name
		}
	}
	return Unknown
}

func (c *Collector) commandLine(ctx context.Context, command string, args ...string) string {
	result, err := c.runner.Run(ctx, command, args...)
	if err != nil || !result.Success() {
		c.debug(ctx, command, err)
		return Unknown
	}
	if line := result.FirstLine(); line != "" {
		return line
	}
	return Unknown
}

func (c *Collector) osRelease() (id, pretty string) {
	data, err := c.fs.ReadFile(platform.OSReleasePath)
	if err != nil {
		return Unknown, Unknown
	}
	rel, err := platform.ParseOSRelease(data)
	if err != nil || rel.ID == "" {
		return Unknown, Unknown
	}
	return rel.ID, rel.Describe()
}

func (c *Collector) cpu() string {
	data, err := c.fs.ReadFile("/proc/cpuinfo")
	if err != nil {
		return Unknown
	}
	return ParseCPUInfo(string(data))
}

func (c *Collector) memory() string {
	data, err := c.fs.ReadFile("/proc/meminfo")
	if err != nil {
		return Unknown
	}
	return ParseMemInfo(string(data))
}

func (c *Collector) disk(ctx context.Context) string {
	result, err := c.runner.Run(ctx, "df", "-h", "/")
	if err != nil || !result.Success() {
		c.debug(ctx, "df", err)
		return Unknown
	}
	return ParseDiskUsage(result.Stdout)
}

func (c *Collector) route(ctx context.Context) (iface, addr string) {
	result, err := c.runner.Run(ctx, "ip", "route", "get", routeProbeTarget)
	if err != nil || !result.Success() {
		c.debug(ctx, "ip", err)
		return Unknown, Unknown
	}
	return ParseRoute(result.Stdout)
}

func (c *Collector) toolVersion(ctx context.Context, p Probe) string {
	if _, err := c.resolver.LookPath(p.Name); err != nil {
		return NotInstalled
	}
	args := p.Args
	if len(args) == 0 {
		args = []string{"--version"}
	}
	result, err := c.runner.Run(ctx, p.Name, args...)
	if err != nil || !result.Success() {
		c.debug(ctx, p.Name, err)
		return Unknown
	}
	return NormalizeVersion(result.Stdout)
}

func (c *Collector) debug(ctx context.Context, probe string, err error) {
	if c.logger == nil {
		return
	}
	fields := []ports.Field{ports.F("probe", probe)}
	if err != nil {
		fields = append(fields, ports.Err(err))
	}
	c.logger.Debug(ctx, "host probe failed", fields...)
}

// NormalizeVersion extracts a semantic version from tool output, e.g.
// "git version 2.43.0" becomes "v2.43.0". Output without a recognizable
// version is returned as its first line.
func NormalizeVersion(output string) string {
	first := ports.CommandResult{Stdout: output}.FirstLine()
	if first == "" {
		return Unknown
	}
	match := versionPattern.FindString(first)
	if match == "" {
		return first
	}
	v := "v" + match
	if !semver.IsValid(v) {
		return first
	}
	return semver.Canonical(v)
}

// ParseCPUInfo summarizes /proc/cpuinfo as "<model> (<n> cores)".
func ParseCPUInfo(content string) string {
	var model string
	cores := 0
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "processor":
			cores++
		case "model name", "Model":
			if model == "" {
				model = strings.TrimSpace(value)
			}
		}
	}
	if model == "" && cores == 0 {
		return Unknown
	}
	if model == "" {
		model = Unknown
	}
	if cores == 0 {
		return model
	}
	return fmt.Sprintf("%s (%d cores)", model, cores)
}

// ParseMemInfo renders MemTotal from /proc/meminfo in GiB.
func ParseMemInfo(content string) string {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return Unknown
		}
		return fmt.Sprintf("%.1f GiB", kb/(1024*1024))
	}
	return Unknown
}

// ParseDiskUsage summarizes `df -h /` output for the root filesystem.
func ParseDiskUsage(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) < 2 {
		return Unknown
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 5 {
		return Unknown
	}
	size, used, avail, pct := fields[1], fields[2], fields[3], fields[4]
	return fmt.Sprintf("%s used of %s (%s free, %s)", used, size, avail, pct)
}

// ParseRoute extracts the device and source address from `ip route get`.
func ParseRoute(output string) (iface, addr string) {
	iface, addr = Unknown, Unknown
	fields := strings.Fields(output)
	for i := 0; i+1 < len(fields); i++ {
		switch fields[i] {
		case "dev":
			iface = fields[i+1]
		case "src":
			addr = fields[i+1]
		}
	}
	return iface, addr
}
