package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(t *testing.T, m tea.Model, text string) tea.Model {
	t.Helper()
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestIdentityPrompt_EnterBothFields(t *testing.T) {
	t.Parallel()

	var m tea.Model = NewIdentityPrompt(Identity{})
	m = typeText(t, m, "Ada Lovelace")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, fieldEmail, m.(IdentityPrompt).Focused())

	m = typeText(t, m, "ada@example.com")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	prompt := m.(IdentityPrompt)
	assert.True(t, prompt.Done())
	assert.Equal(t, Identity{Name: "Ada Lovelace", Email: "ada@example.com"}, prompt.Result())
	assert.Empty(t, prompt.View())
}

func TestIdentityPrompt_CancelYieldsEmpty(t *testing.T) {
	t.Parallel()

	for _, keyMsg := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		var m tea.Model = NewIdentityPrompt(Identity{Name: "Preset"})
		m = typeText(t, m, "x")

		m, cmd := m.Update(keyMsg)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
		assert.Equal(t, Identity{}, m.(IdentityPrompt).Result())
	}
}

func TestIdentityPrompt_EmptySubmitIsAllowed(t *testing.T) {
	t.Parallel()

	var m tea.Model = NewIdentityPrompt(Identity{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	prompt := m.(IdentityPrompt)
	assert.True(t, prompt.Done())
	assert.Equal(t, Identity{}, prompt.Result())
}

func TestIdentityPrompt_DefaultsAndNavigation(t *testing.T) {
	t.Parallel()

	var m tea.Model = NewIdentityPrompt(Identity{Name: "Ada", Email: "ada@example.com"})
	assert.Equal(t, fieldName, m.(IdentityPrompt).Focused())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldEmail, m.(IdentityPrompt).Focused())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldName, m.(IdentityPrompt).Focused())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldEmail, m.(IdentityPrompt).Focused())

	assert.Equal(t, Identity{Name: "Ada", Email: "ada@example.com"}, m.(IdentityPrompt).Result())
}

func TestIdentityPrompt_View(t *testing.T) {
	t.Parallel()

	view := NewIdentityPrompt(Identity{}).View()

	assert.Contains(t, view, "Who is this workstation for?")
	assert.Contains(t, view, "Name")
	assert.Contains(t, view, "Email")
	assert.Contains(t, view, "esc skip")
}
