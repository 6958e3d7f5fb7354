package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryInput(t *testing.T) {
	in := NewQueryInput(nil, "Ask", "What do my notes say?")

	require.NotNil(t, in)
	assert.NotNil(t, in.styles)
	assert.Equal(t, "", in.Value())
	assert.Equal(t, "Ask", in.Label())
	assert.True(t, in.Focused())
	assert.NotNil(t, in.Init())
}

func TestQueryInput_Typing(t *testing.T) {
	in := NewQueryInput(nil, "Search", "")

	updated, _ := in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("go")})
	assert.Same(t, in, updated)
	assert.Equal(t, "go", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
}

func TestQueryInput_FocusAndBlur(t *testing.T) {
	in := NewQueryInput(nil, "Search", "")

	in.Blur()
	assert.False(t, in.Focused())
	in.Focus()
	assert.True(t, in.Focused())
}

func TestQueryInput_View(t *testing.T) {
	in := NewQueryInput(nil, "Search", "")
	in.SetValue("kubernetes")
	in.SetWidth(80)

	view := in.View()
	assert.Contains(t, view, "Search:")
	assert.Contains(t, view, "kubernetes")

	in.SetLabel("Ask")
	assert.Contains(t, in.View(), "Ask:")
}
