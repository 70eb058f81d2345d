package platform

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// OSReleasePath is the freedesktop location of distribution metadata.
const OSReleasePath = "/etc/os-release"

// OSRelease holds the fields of /etc/os-release that provisioning uses.
type OSRelease struct {
	ID         string
	IDLike     []string
	Name       string
	PrettyName string
	VersionID  string
}

// ParseOSRelease parses os-release content. Values may be quoted.
func ParseOSRelease(data []byte) (OSRelease, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return OSRelease{}, fmt.Errorf("failed to parse os-release: %w", err)
	}

	section := cfg.Section(ini.DefaultSection)
	rel := OSRelease{
		ID:         strings.ToLower(section.Key("ID").String()),
		Name:       section.Key("NAME").String(),
		PrettyName: section.Key("PRETTY_NAME").String(),
		VersionID:  section.Key("VERSION_ID").String(),
	}
	for _, like := range strings.Fields(section.Key("ID_LIKE").String()) {
		rel.IDLike = append(rel.IDLike, strings.ToLower(like))
	}
	return rel, nil
}

// Families returns ID followed by ID_LIKE entries.
func (r OSRelease) Families() []string {
	families := make([]string, 0, 1+len(r.IDLike))
	if r.ID != "" {
		families = append(families, r.ID)
	}
	return append(families, r.IDLike...)
}

// Describe returns PRETTY_NAME, falling back to NAME VERSION_ID, then ID.
func (r OSRelease) Describe() string {
	switch {
	case r.PrettyName != "":
		return r.PrettyName
	case r.Name != "":
		return strings.TrimSpace(r.Name + " " + r.VersionID)
	default:
		return r.ID
	}
}
