package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewView(t *testing.T) {
	v := NewView(nil)

	require.NotNil(t, v)
	assert.NotNil(t, v.styles)
	assert.Len(t, v.Items(), 5)
	assert.Equal(t, 0, v.Selected())
	assert.Nil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil)

	v, _ = v.Update(keyRunes("k"))
	assert.Equal(t, 0, v.Selected())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v, _ = v.Update(keyRunes("j"))
	assert.Equal(t, 2, v.Selected())

	for range 10 {
		v, _ = v.Update(keyRunes("j"))
	}
	assert.Equal(t, len(v.Items())-1, v.Selected())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, len(v.Items())-2, v.Selected())
}

func TestView_EnterChangesView(t *testing.T) {
	v := NewView(nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewAsk}, cmd())
}

func TestView_Shortcuts(t *testing.T) {
	tests := []struct {
		key  string
		view messages.ViewType
	}{
		{"a", messages.ViewAsk},
		{"s", messages.ViewSearch},
		{"d", messages.ViewDocuments},
		{"?", messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := NewView(nil)
			_, cmd := v.Update(keyRunes(tt.key))
			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.view}, cmd())
		})
	}
}

func TestView_Quit(t *testing.T) {
	v := NewView(nil)

	_, cmd := v.Update(keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, len(v.Items())-1, v.Selected())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil)
	v, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	v.SetSummary("3 documents indexed")

	view := v.View()
	assert.Contains(t, view, "Recall")
	assert.Contains(t, view, "3 documents indexed")
	assert.Contains(t, view, "> ")
	for _, item := range v.Items() {
		assert.Contains(t, view, item.Label)
	}
}
