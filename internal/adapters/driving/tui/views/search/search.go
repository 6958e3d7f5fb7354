// Package search provides the search view for the TUI.
package search

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/actions"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// modes is the order the Mode key cycles through.
var modes = []domain.SearchMethod{
	domain.SearchMethodHybrid,
	domain.SearchMethodSemantic,
	domain.SearchMethodKeyword,
}

// View is the search view with input, results list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	retrieval driving.RetrievalService
	documents driving.DocumentService
	options   domain.HybridOptions
	ctx       context.Context

	mode       int
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
	started    time.Time
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	retrieval driving.RetrievalService,
	documents driving.DocumentService,
	opts domain.HybridOptions,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s, "Search", "Search your notes..."),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		retrieval:  retrieval,
		documents:  documents,
		options:    opts,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.StatusMessage:
		v.statusbar.SetMessage(msg.Text)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if keymap.Matches(key, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if keymap.Matches(key, v.keymap.Mode) {
		v.mode = (v.mode + 1) % len(modes)
		return v, nil
	}

	if v.focusInput {
		if keymap.Matches(key, v.keymap.Submit) {
			query := v.input.Value()
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			v.statusbar.SetMessage("")
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.Read):
		if r := v.list.SelectedResult(); r != nil {
			return v, actions.ReadDocument(v.ctx, v.documents, r.Document.ID, messages.ViewSearch)
		}
	case keymap.Matches(key, v.keymap.Details):
		if r := v.list.SelectedResult(); r != nil {
			return v, actions.LoadDetails(v.ctx, v.documents, r.Document.ID)
		}
	case keymap.Matches(key, v.keymap.Open):
		if r := v.list.SelectedResult(); r != nil {
			return v, actions.OpenDocument(v.ctx, v.documents, r.Document.ID)
		}
	}
	return v, nil
}

// performSearch runs the query with the current ranking mode.
func (v *View) performSearch(query string) tea.Cmd {
	mode := v.Mode()
	opts := v.options
	v.started = time.Now()
	return func() tea.Msg {
		if v.retrieval == nil {
			return messages.ErrorOccurred{Err: ErrNoRetrievalService}
		}

		var (
			results []domain.ScoredDocument
			err     error
		)
		switch mode {
		case domain.SearchMethodSemantic:
			results, err = v.retrieval.SemanticSearch(v.ctx, query, opts.Limit)
		case domain.SearchMethodKeyword:
			results, err = v.retrieval.KeywordSearch(v.ctx, query, opts.Limit)
		default:
			results, err = v.retrieval.HybridSearch(v.ctx, query, opts)
		}
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	var elapsed int64
	if !v.started.IsZero() {
		elapsed = time.Since(v.started).Milliseconds()
	}
	v.statusbar.SetResults(len(msg.Results), elapsed)
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	header := v.styles.Title.Render("Recall") + "  " + v.styles.Muted.Render(fmt.Sprintf("[%s]", v.Mode()))
	sections = append(sections, header, "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Mode returns the active ranking mode.
func (v *View) Mode() domain.SearchMethod {
	return modes[v.mode]
}

// Query returns the current input value.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input value.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current results.
func (v *View) Results() []domain.ScoredDocument {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset returns the view to an empty input.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
}
