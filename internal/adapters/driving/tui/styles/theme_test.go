package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []lipgloss.Color{
		theme.Primary, theme.Secondary, theme.Foreground, theme.Muted,
		theme.Success, theme.Warning, theme.Error, theme.Border, theme.Bar,
	} {
		assert.NotEmpty(t, string(c))
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	seen := make(map[lipgloss.Color]bool)
	for _, c := range []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error} {
		assert.False(t, seen[c], "duplicate accent: %s", c)
		seen[c] = true
	}
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)
	require.NotNil(t, s)
	assert.Equal(t, theme, s.Theme())

	s = NewStyles(nil)
	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("Recall"), "Recall")
	assert.Contains(t, s.Answer.Render("grounded"), "grounded")
	assert.Contains(t, s.Warning.Render("fallback"), "fallback")
}
