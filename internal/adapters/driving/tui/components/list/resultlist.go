// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/scoring"
)

// linesPerResult is the height of one rendered result.
const linesPerResult = 3

// ResultList displays ranked documents in a navigable list.
type ResultList struct {
	results  []domain.ScoredDocument
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	visible := (r.height - 4) / linesPerResult
	if visible < 1 {
		visible = 1
	}
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	end := min(start+visible, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

// renderResult formats one result: title and score, path, then a preview.
func (r *ResultList) renderResult(index int, result *domain.ScoredDocument) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := result.Document.Title
	if title == "" {
		title = result.Document.SourcePath
	}
	maxTitle := max(r.width-36, 10)
	title = scoring.Truncate(title, maxTitle-3)

	score := fmt.Sprintf("%.2f", result.Score)
	breakdown := fmt.Sprintf("sem %.2f  kw %.2f", result.SemanticScore, result.KeywordScore)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitle, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitle, title, score))
	}
	titleLine += "  " + r.styles.Muted.Render(breakdown)

	pathLine := r.styles.Subtitle.Render("    " + result.Document.SourcePath)

	preview := ""
	if len(result.Highlights) > 0 {
		preview = result.Highlights[0]
	} else {
		preview = strings.Join(strings.Fields(result.Document.Content), " ")
	}
	preview = scoring.Truncate(preview, max(r.width-9, 20))

	return titleLine + "\n" + pathLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.ScoredDocument) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.ScoredDocument {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.ScoredDocument {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty returns whether the list is empty.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
