// Package templates renders the workspace documentation files from live host facts.
package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/groundwork/internal/domain/hostfacts"
)

// Document file names, in the order they are written.
const (
	Readme   = "README.md"
	System   = "SYSTEM.md"
	Tools    = "TOOLS.md"
	Workflow = "WORKFLOW.md"
)

// Data is everything a documentation template can reference.
type Data struct {
	Facts       *hostfacts.Facts
	Owner       string
	Generated   string
	Base        string
	Directories []string
}

const header = `<!-- generated by groundwork on {{.Facts.Hostname}} ({{.Facts.Kernel}}) -->
`

const readmeTemplate = header + `# {{.Facts.Hostname}} workspace

{{if .Owner}}Maintained by {{.Owner}}. {{end}}Provisioned on {{.Generated}}.

Everything lives under ` + "`{{.Base}}`" + `:

| Area | Path |
|------|------|
{{- range .Directories}}
| {{category .}} | ` + "`{{.}}`" + ` |
{{- end}}

See [SYSTEM.md](SYSTEM.md) for the host, [TOOLS.md](TOOLS.md) for installed
tooling and [WORKFLOW.md](WORKFLOW.md) for how the directories are used.
`

const systemTemplate = header + `# System: {{.Facts.Hostname}}

| Fact | Value |
|------|-------|
| Hostname | {{.Facts.Hostname}} |
| Operating system | {{.Facts.OSPretty}} ({{.Facts.OSID}}) |
| Kernel | {{.Facts.Kernel}} |
| Architecture | {{.Facts.Arch}} |
| CPU | {{.Facts.CPU}} |
| Memory | {{.Facts.Memory}} |
| Disk (/) | {{.Facts.Disk}} |
| Primary interface | {{.Facts.Interface}} |
| Primary IP address | {{.Facts.IPAddress}} |

Snapshot taken {{.Generated}}.
`

const toolsTemplate = header + `# Tools on {{.Facts.Hostname}}

Kernel {{.Facts.Kernel}}, recorded {{.Generated}}.

| Tool | Version |
|------|---------|
{{- range .Facts.Tools}}
| {{.Name}} | {{.Version}} |
{{- else}}
| (none recorded) | |
{{- end}}
`

const workflowTemplate = header + `# Workflow

Host {{.Facts.Hostname}} running kernel {{.Facts.Kernel}}.

## Directory roles
{{range .Directories}}
- ` + "`{{.}}`" + ` ({{category .}}): {{role .}}
{{- end}}

## Conventions

- Start new work with ` + "`newproject <name>`" + `; it lands in active/.
- Move finished or paused projects to archive/ rather than deleting them.
- Keep upstream clones you patch in forks/, one directory per upstream.
- Anything reusable across projects belongs in patterns/ or scripts/.
`

var roles = map[string]string{
	"active":   "projects under active development",
	"learning": "tutorials, courses and experiments",
	"archive":  "finished or paused projects",
	"forks":    "clones of external repositories",
	"scripts":  "reusable automation",
	"patterns": "reference implementations by category",
}

var funcs = template.FuncMap{
	"title":    title,
	"category": category,
	"role":     role,
}

var registry = func() *template.Template {
	root := template.New("docs").Funcs(funcs)
	for name, body := range map[string]string{
		Readme:   readmeTemplate,
		System:   systemTemplate,
		Tools:    toolsTemplate,
		Workflow: workflowTemplate,
	} {
		template.Must(root.New(name).Parse(body))
	}
	return root
}()

// Names returns the fixed set of document names in write order.
func Names() []string {
	return []string{Readme, System, Tools, Workflow}
}

// Render executes the named document template.
func Render(name string, data Data) (string, error) {
	tmpl := registry.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("unknown document template %q", name)
	}
	if data.Facts == nil {
		return "", fmt.Errorf("rendering %s: host facts are required", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// category renders "patterns/testing" as "Patterns / Testing".
func category(dir string) string {
	return title(strings.ReplaceAll(dir, "/", " / "))
}

// title builds a caser per call; a Caser must not be shared between goroutines.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func role(dir string) string {
	top, _, _ := strings.Cut(dir, "/")
	if r, ok := roles[top]; ok {
		return r
	}
	return "workspace area"
}
