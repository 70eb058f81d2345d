package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/groundwork/internal/tui/ui"
)

// Identity is the optional operator input used by later steps.
type Identity struct {
	Name  string
	Email string
}

const (
	fieldName = iota
	fieldEmail
)

// IdentityPrompt asks for a display name and an email address. Escape or
// Ctrl+C skips the prompt and yields empty values.
type IdentityPrompt struct {
	inputs    []textinput.Model
	focus     int
	keys      ui.KeyMap
	styles    ui.Styles
	done      bool
	cancelled bool
}

// NewIdentityPrompt creates a prompt pre-filled with defaults.
func NewIdentityPrompt(defaults Identity) IdentityPrompt {
	name := textinput.New()
	name.Placeholder = "Ada Lovelace"
	name.CharLimit = ui.DefaultInputCharLimit
	name.Width = ui.DefaultWidthSmall
	name.SetValue(defaults.Name)
	name.Focus()

	email := textinput.New()
	email.Placeholder = "ada@example.com"
	email.CharLimit = ui.DefaultInputCharLimit
	email.Width = ui.DefaultWidthSmall
	email.SetValue(defaults.Email)

	return IdentityPrompt{
		inputs: []textinput.Model{name, email},
		keys:   ui.DefaultKeyMap(),
		styles: ui.DefaultStyles(),
	}
}

// Init implements tea.Model.
func (m IdentityPrompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m IdentityPrompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			if m.focus == len(m.inputs)-1 {
				m.done = true
				return m, tea.Quit
			}
			return m.moveFocus(1)
		case key.Matches(msg, m.keys.Next):
			return m.moveFocus(1)
		case key.Matches(msg, m.keys.Prev):
			return m.moveFocus(-1)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m IdentityPrompt) moveFocus(delta int) (tea.Model, tea.Cmd) {
	next := (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = next
	return m, m.inputs[m.focus].Focus()
}

// View implements tea.Model.
func (m IdentityPrompt) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Who is this workstation for?"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Both are optional; git identity and SSH key are deferred without them."))
	b.WriteString("\n\n")

	for i, label := range []string{"Name", "Email"} {
		style := m.styles.Label
		if i == m.focus {
			style = m.styles.LabelFocus
		}
		fmt.Fprintf(&b, "%s %s\n", style.Render(label), m.inputs[i].View())
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(strings.Join(help, " • ")))
	b.WriteString("\n")
	return b.String()
}

// Focused returns the index of the focused field.
func (m IdentityPrompt) Focused() int {
	return m.focus
}

// Done reports whether the prompt has finished.
func (m IdentityPrompt) Done() bool {
	return m.done
}

// Result returns the entered identity, or empty values when cancelled.
func (m IdentityPrompt) Result() Identity {
	if m.cancelled {
		return Identity{}
	}
	return Identity{
		Name:  strings.TrimSpace(m.inputs[fieldName].Value()),
		Email: strings.TrimSpace(m.inputs[fieldEmail].Value()),
	}
}

// PromptIdentity runs the prompt on the given terminal streams. An
// interrupted or killed program yields empty values rather than an error.
func PromptIdentity(ctx context.Context, in io.Reader, out io.Writer, defaults Identity) (Identity, error) {
	program := tea.NewProgram(
		NewIdentityPrompt(defaults),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
			return Identity{}, nil
		}
		return Identity{}, fmt.Errorf("identity prompt: %w", err)
	}

	m, ok := final.(IdentityPrompt)
	if !ok {
		return Identity{}, nil
	}
	return m.Result(), nil
}
