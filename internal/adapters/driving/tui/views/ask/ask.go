// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/actions"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// ErrNoQueryService indicates that no query service was provided.
var ErrNoQueryService = errors.New("query service is required")

// View asks questions through the retrieval pipeline and shows the answer
// with the notes it was grounded in.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	statusbar *status.Bar

	query     driving.QueryService
	documents driving.DocumentService
	ctx       context.Context

	response   *domain.QueryResponse
	selected   int
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
}

// NewView creates a new ask view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	query driving.QueryService,
	documents driving.DocumentService,
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
		input:      input.NewQueryInput(s, "Ask", "Ask a question about your notes..."),
		statusbar:  status.NewBar(s, km),
		query:      query,
		documents:  documents,
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

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
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

	if v.focusInput {
		if keymap.Matches(key, v.keymap.Submit) {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateAnswering)
			v.statusbar.SetMessage("")
			v.focusInput = false
			v.input.Blur()
			return v, v.ask(question)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	sources := v.Sources()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(sources)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.NewQuery):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.Read):
		if v.selected < len(sources) {
			id := domain.DocumentID(sources[v.selected])
			return v, actions.ReadDocument(v.ctx, v.documents, id, messages.ViewAsk)
		}
	case keymap.Matches(key, v.keymap.Details):
		if v.selected < len(sources) {
			return v, actions.LoadDetails(v.ctx, v.documents, domain.DocumentID(sources[v.selected]))
		}
	case keymap.Matches(key, v.keymap.Open):
		if v.selected < len(sources) {
			return v, actions.OpenDocument(v.ctx, v.documents, domain.DocumentID(sources[v.selected]))
		}
	}
	return v, nil
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.query == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		resp, err := v.query.Query(v.ctx, question)
		return messages.AnswerCompleted{Question: question, Response: resp, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.response = msg.Response
	v.selected = 0
	v.statusbar.SetResults(msg.Response.RetrievedCount, msg.Response.SearchTimeMs)
	switch {
	case msg.Response.GenerationFailed:
		v.statusbar.SetMessage("generation failed")
	case !msg.Response.ContextUsed:
		v.statusbar.SetMessage("no context")
	case msg.Response.FallbackUsed:
		v.statusbar.SetMessage(string(msg.Response.Method) + " fallback")
	default:
		v.statusbar.SetMessage(string(msg.Response.Method))
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Recall"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.response != nil {
		sections = append(sections, v.renderAnswer()...)
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() []string {
	resp := v.response
	out := make([]string, 0, len(resp.Sources)+6)

	if !resp.ContextUsed {
		out = append(out, v.styles.Warning.Render("No relevant notes were found; the answer is not grounded."))
	} else if resp.FallbackUsed {
		out = append(out, v.styles.Warning.Render(fmt.Sprintf("Primary search failed; used %s search instead.", resp.Method)))
	}
	if resp.GenerationFailed {
		out = append(out, v.styles.Warning.Render("Answer generation failed; showing the retrieved notes."))
	}

	answer := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(resp.AnswerText)
	out = append(out, v.styles.Answer.Render(answer), "")

	if len(resp.Sources) > 0 {
		out = append(out, v.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(resp.Sources))))
		for i, src := range resp.Sources {
			line := "  " + src
			if i == v.selected && !v.focusInput {
				out = append(out, v.styles.Selected.Render("> "+src))
				continue
			}
			out = append(out, v.styles.Normal.Render(line))
		}
		out = append(out, "")
	}
	return out
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Response returns the last answer, if any.
func (v *View) Response() *domain.QueryResponse {
	return v.response
}

// Sources returns the source paths of the last answer.
func (v *View) Sources() []string {
	if v.response == nil {
		return nil
	}
	return v.response.Sources
}

// SelectedIndex returns the selected source index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SetQuestion sets the input value.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
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
	v.response = nil
	v.selected = 0
	v.err = nil
	v.statusbar.Clear()
}
