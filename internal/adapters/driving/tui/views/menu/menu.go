// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
)

// Item represents a single menu option.
type Item struct {
	Label string
	// Key selects the item directly.
	Key  string
	View messages.ViewType
	Quit bool
}

// View is the main menu.
type View struct {
	styles   *styles.Styles
	items    []Item
	summary  string
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Ask", Key: "a", View: messages.ViewAsk},
			{Label: "Search", Key: "s", View: messages.ViewSearch},
			{Label: "Documents", Key: "d", View: messages.ViewDocuments},
			{Label: "Help", Key: "?", View: messages.ViewHelp},
			{Label: "Quit", Key: "q", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil
		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil
		case "enter":
			return v, v.choose(v.items[v.selected])
		}

		for i, item := range v.items {
			if msg.String() == item.Key {
				v.selected = i
				return v, v.choose(item)
			}
		}
	}

	return v, nil
}

func (v *View) choose(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Recall"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Ask your notes. Every answer starts with retrieval."))
	b.WriteString("\n")
	if v.summary != "" {
		b.WriteString(v.styles.Muted.Render(v.summary))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, item := range v.items {
		cursor, style := "  ", v.styles.Normal
		if i == v.selected {
			cursor, style = "> ", v.styles.Subtitle
		}
		b.WriteString(cursor + style.Render(fmt.Sprintf("%-10s", item.Label)) + " " + v.styles.Muted.Render("["+item.Key+"]"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetSummary sets the line describing the index.
func (v *View) SetSummary(summary string) {
	v.summary = summary
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu items.
func (v *View) Items() []Item {
	return v.items
}
