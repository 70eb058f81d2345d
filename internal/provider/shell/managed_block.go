package shell

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundwork/internal/domain/config"
)

const (
	blockStartFmt = "# >>> groundwork %s >>>"
	blockEndFmt   = "# <<< groundwork %s <<<"
)

// StartMarker returns the comment line that opens a managed section.
func StartMarker(section string) string {
	return fmt.Sprintf(blockStartFmt, section)
}

// HasManagedBlock reports whether the section's start marker is present.
func HasManagedBlock(content, section string) bool {
	return strings.Contains(content, StartMarker(section))
}

// CountManagedBlocks counts occurrences of the section's start marker.
func CountManagedBlocks(content, section string) int {
	return strings.Count(content, StartMarker(section))
}

// WriteManagedBlock replaces (or appends) a managed block in the content.
func WriteManagedBlock(content, section, block string) string {
	start := StartMarker(section)
	end := fmt.Sprintf(blockEndFmt, section)

	managedBlock := start + "\n" + block + end + "\n"

	startIdx := strings.Index(content, start)
	if startIdx == -1 {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if content == "" {
			return managedBlock
		}
		return content + "\n" + managedBlock
	}

	endIdx := strings.Index(content, end)
	if endIdx == -1 {
		// start without end: replace through EOF
		return content[:startIdx] + managedBlock
	}

	afterEnd := endIdx + len(end)
	if afterEnd < len(content) && content[afterEnd] == '\n' {
		afterEnd++
	}

	return content[:startIdx] + managedBlock + content[afterEnd:]
}

// RenderBlock produces the alias and function definitions in configured order.
func RenderBlock(aliases []config.Alias, functions []config.Function) string {
	var b strings.Builder
	for _, a := range aliases {
		fmt.Fprintf(&b, "alias %s=%s\n", a.Name, quote(a.Command))
	}
	if len(aliases) > 0 && len(functions) > 0 {
		b.WriteString("\n")
	}
	for _, f := range functions {
		fmt.Fprintf(&b, "%s() {\n", f.Name)
		for _, line := range strings.Split(strings.TrimSpace(f.Body), "\n") {
			fmt.Fprintf(&b, "    %s\n", strings.TrimSpace(line))
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// quote wraps s in single quotes for POSIX shells.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
