package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// styler renders emphasis only when writing to a colour-capable terminal.
type styler struct {
	enabled bool
	title   lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
}

func newStyler(w io.Writer) styler {
	return styler{
		enabled: colourEnabled(w),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")),
	}
}

// colourEnabled is true for terminals unless NO_COLOR is set.
func colourEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s styler) Title(text string) string { return s.render(s.title, text) }
func (s styler) Dim(text string) string   { return s.render(s.dim, text) }
func (s styler) Warn(text string) string  { return s.render(s.warn, text) }

func (s styler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
