// Package hostfacts gathers live descriptive facts about the host for
// documentation rendering.
package hostfacts

import (
	"github.com/felixgeelhaar/groundwork/internal/domain/provision"
)

// Unknown is reported for any fact whose probe failed.
const Unknown = "unknown"

// NotInstalled is reported for tools whose executable cannot be resolved.
const NotInstalled = "not installed"

// ToolVersion is the installed version of one tool.
type ToolVersion struct {
	Name    string
	Version string
}

// Installed reports whether the tool's executable was found.
func (t ToolVersion) Installed() bool {
	return t.Version != NotInstalled
}

// Facts is a snapshot of host information.
type Facts struct {
	Hostname  string
	OSID      string
	OSPretty  string
	Kernel    string
	Arch      string
	CPU       string
	Memory    string
	Disk      string
	Interface string
	IPAddress string
	Tools     []ToolVersion
}

// Tool returns the version of the named tool, or NotInstalled.
func (f *Facts) Tool(name string) string {
	for _, t := range f.Tools {
		if t.Name == name {
			return t.Version
		}
	}
	return NotInstalled
}

// FromValues returns facts cached by an earlier gather in this run.
func FromValues(values *provision.Values) (*Facts, bool) {
	if values == nil {
		return nil, false
	}
	v, ok := values.Lookup(provision.KeyHostFacts)
	if !ok {
		return nil, false
	}
	facts, ok := v.(*Facts)
	return facts, ok
}
