package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/views/search"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView       *menu.View
	searchView     *search.View
	askView        *ask.View
	documentsView  *documents.View
	docContentView *doccontent.View
	docDetailsView *docdetails.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		menuView:       menu.NewView(s),
		searchView:     search.NewView(s, km, ports.Retrieval, ports.Document, ports.SearchOptions),
		askView:        ask.NewView(s, km, ports.Query, ports.Document),
		documentsView:  documents.NewView(s, ports.Document, ports.Sync),
		docContentView: doccontent.NewView(s),
		docDetailsView: docdetails.NewView(s),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.askView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("recall - Notes"),
		a.loadStats(),
	)
}

func (a *App) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := a.ports.Document.Stats(a.ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.updateCurrent(msg)

	case messages.ViewChanged:
		// Views entered from the menu start fresh; views returned to keep their state.
		fromMenu := a.currentView == messages.ViewMenu
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSearch:
			if !fromMenu {
				return a, nil
			}
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewAsk:
			if !fromMenu {
				return a, nil
			}
			a.askView.Reset()
			return a, a.askView.Init()
		case messages.ViewDocuments:
			if !fromMenu {
				return a, nil
			}
			return a, a.documentsView.Load("")
		case messages.ViewMenu:
			return a, a.loadStats()
		case messages.ViewDocContent, messages.ViewDocDetails, messages.ViewHelp:
		}
		return a, nil

	case messages.StatsLoaded:
		if msg.Err == nil && msg.Stats != nil {
			a.menuView.SetSummary(fmt.Sprintf("%d documents · %d chunks · %d tags",
				msg.Stats.Documents, msg.Stats.Chunks, msg.Stats.Tags))
		}
		return a, nil

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.AnswerCompleted:
		a.askView, cmd = a.askView.Update(msg)
		a.err = a.askView.Err()
		return a, cmd

	case messages.DocumentsLoaded, messages.DocumentRefreshed:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.docContentView.SetDocument(msg.Document, msg.Back)
		a.currentView = messages.ViewDocContent
		return a, nil

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, a.updateCurrent(messages.ErrorOccurred{Err: msg.Err})
		}
		a.docDetailsView.SetBack(a.currentView)
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
		a.currentView = messages.ViewDocDetails
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.updateCurrent(msg)
	}

	return a, a.updateCurrent(msg)
}

// updateCurrent forwards msg to the active view.
func (a *App) updateCurrent(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Navigation:
  esc         Back
  ctrl+c      Quit

Menu:
  j/k, ↑/↓    Navigate options
  a s d ?     Ask, Search, Documents, Help
  q           Quit

Ask and Search:
  enter       Submit
  tab         Cycle search mode (hybrid, semantic, keyword)
  n           New query

Results and sources:
  j/k, ↑/↓    Navigate
  enter       Read document
  d           Show details
  o           Open in default application

Documents:
  enter       Actions (content, details, open, refresh)
  r           Reload list

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
	a.docDetailsView.SetDimensions(width, height)
}
