// Package docdetails provides the document details view component for the TUI.
package docdetails

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

const timeFormat = "2006-01-02 15:04:05"

// View is the document details view.
type View struct {
	styles *styles.Styles

	details      *driving.DocumentDetails
	back         messages.ViewType
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new document details view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		back:   messages.ViewDocuments,
		width:  80,
		height: 24,
	}
}

// SetDetails sets the document details to display.
func (v *View) SetDetails(details *driving.DocumentDetails) {
	v.details = details
	v.scrollOffset = 0
	v.err = nil
}

// SetBack sets the view returned to on esc.
func (v *View) SetBack(back messages.ViewType) {
	v.back = back
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			v.SetError(msg.Err)
			return v, nil
		}
		v.SetDetails(msg.Details)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.scrollOffset > 0 {
			v.scrollOffset--
		}
	case "down", "j":
		if v.scrollOffset < v.maxScrollOffset() {
			v.scrollOffset++
		}
	case "esc":
		back := v.back
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.Lines())-v.visibleLines(), 0)
}

// Lines returns the formatted detail lines.
func (v *View) Lines() []string {
	d := v.details
	if d == nil {
		return nil
	}

	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	lines := []string{
		formatField("ID", d.ID),
		formatField("Title", title),
		formatField("Path", d.SourcePath),
		formatField("Type", d.FileType),
		formatField("Checksum", d.Checksum),
		formatField("Chunks", strconv.Itoa(d.ChunkCount)),
	}

	if d.EmbeddingProvider != "" {
		lines = append(lines, formatField("Embedding", fmt.Sprintf("%s (%d dims)", d.EmbeddingProvider, d.Dimensions)))
	} else {
		lines = append(lines, formatField("Embedding", "none"))
	}
	if len(d.Tags) > 0 {
		lines = append(lines, formatField("Tags", strings.Join(d.Tags, ", ")))
	}

	lines = appendTime(lines, "Created", d.CreatedAt)
	lines = appendTime(lines, "Modified", d.ModifiedAt)
	lines = appendTime(lines, "Indexed", d.IndexedAt)

	lines = append(lines, formatField("Accessed", fmt.Sprintf("%d times", d.AccessCount)))
	lines = appendTime(lines, "Last access", d.LastAccessed)
	return lines
}

func appendTime(lines []string, label string, t time.Time) []string {
	if t.IsZero() {
		return lines
	}
	return append(lines, formatField(label, t.Local().Format(timeFormat)))
}

func formatField(label, value string) string {
	return fmt.Sprintf("%-12s %s", label+":", value)
}

// View renders the document details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 0), 60)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.details == nil:
		b.WriteString(v.styles.Muted.Render("No document details available"))
		b.WriteString("\n")
	default:
		lines := v.Lines()
		visible := v.visibleLines()
		end := min(v.scrollOffset+visible, len(lines))
		for _, line := range lines[v.scrollOffset:end] {
			label, value, _ := strings.Cut(line, ":")
			b.WriteString(v.styles.Subtitle.Render(label + ":"))
			b.WriteString(v.styles.Normal.Render(value))
			b.WriteString("\n")
		}
		if len(lines) > visible {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [Line %d-%d of %d]", v.scrollOffset+1, end, len(lines))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Details returns the current document details.
func (v *View) Details() *driving.DocumentDetails {
	return v.details
}

// ScrollOffset returns the index of the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
