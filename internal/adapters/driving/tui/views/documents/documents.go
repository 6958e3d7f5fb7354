// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/actions"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/scoring"
)

// ActionOption represents a document action.
type ActionOption int

const (
	ActionShowContent ActionOption = iota
	ActionShowDetails
	ActionOpenDocument
	ActionRefresh
	ActionCancel
)

var actionLabels = []string{
	ActionShowContent:  "Show Content",
	ActionShowDetails:  "Show Details",
	ActionOpenDocument: "Open Document",
	ActionRefresh:      "Refresh From Disk",
	ActionCancel:       "Cancel",
}

// View is the documents list view.
type View struct {
	styles    *styles.Styles
	documents driving.DocumentService
	sync      driving.SyncService
	ctx       context.Context

	tag          string
	docs         []domain.Document
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
	loading      bool
	showingMenu  bool
	menuSelected ActionOption
	scrollOffset int
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, documents driving.DocumentService, sync driving.SyncService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		documents: documents,
		sync:      sync,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the document list.
func (v *View) Init() tea.Cmd {
	return v.Load(v.tag)
}

// Load resets the view and loads documents, optionally filtered by tag.
func (v *View) Load(tag string) tea.Cmd {
	v.tag = tag
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	v.notice = ""
	v.showingMenu = false
	v.loading = true
	return v.loadDocuments()
}

func (v *View) loadDocuments() tea.Cmd {
	tag := v.tag
	return func() tea.Msg {
		if v.documents == nil {
			return messages.DocumentsLoaded{Tag: tag, Err: actions.ErrNoDocumentService}
		}
		var (
			docs []domain.Document
			err  error
		)
		if tag != "" {
			docs, err = v.documents.ListByTag(v.ctx, tag)
		} else {
			docs, err = v.documents.List(v.ctx)
		}
		return messages.DocumentsLoaded{Tag: tag, Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		if msg.Tag != v.tag {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.docs = msg.Documents
		}
		return v, nil

	case messages.DocumentRefreshed:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		if msg.Report != nil && msg.Report.Skipped > 0 {
			v.notice = "Document is up to date."
			return v, nil
		}
		v.notice = "Document refreshed."
		return v, v.loadDocuments()

	case messages.StatusMessage:
		v.notice = msg.Text
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
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.docs)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if len(v.docs) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionShowContent
		}
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "r":
		return v, v.Load(v.tag)
	}

	return v, nil
}

func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.menuSelected > ActionShowContent {
			v.menuSelected--
		}
	case "down", "j":
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case "enter":
		return v.handleMenuSelect()
	case "esc":
		v.showingMenu = false
	}

	return v, nil
}

func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false
	doc := v.SelectedDocument()
	if doc == nil {
		return v, nil
	}

	switch v.menuSelected {
	case ActionShowContent:
		return v, actions.ReadDocument(v.ctx, v.documents, doc.ID, messages.ViewDocuments)
	case ActionShowDetails:
		return v, actions.LoadDetails(v.ctx, v.documents, doc.ID)
	case ActionOpenDocument:
		return v, actions.OpenDocument(v.ctx, v.documents, doc.ID)
	case ActionRefresh:
		return v, actions.RefreshDocument(v.ctx, v.sync, doc.ID, doc.SourcePath)
	case ActionCancel:
	}
	return v, nil
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	title := fmt.Sprintf("Documents (%d)", len(v.docs))
	if v.tag != "" {
		title = fmt.Sprintf("Documents tagged %q (%d)", v.tag, len(v.docs))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.docs) == 0:
		b.WriteString(v.styles.Muted.Render("No documents indexed. Run `recall index` first."))
	case v.showingMenu:
		return b.String() + v.renderActionMenu()
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.docs))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.docs[i]))
			b.WriteString("\n")
		}
		if len(v.docs) > visible {
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.docs))))
		}
	}

	if v.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := doc.Title
	if title == "" {
		title = doc.SourcePath
	}
	col := max(v.width/2-4, 10)
	title = scoring.Truncate(title, col-3)

	path := doc.SourcePath
	if tags := strings.Join(doc.Tags, ","); tags != "" {
		path += "  #" + tags
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, col, title, path))
	}
	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, col, title)) + v.styles.Muted.Render(path)
}

func (v *View) renderActionMenu() string {
	var b strings.Builder

	if doc := v.SelectedDocument(); doc != nil {
		title := doc.Title
		if title == "" {
			title = doc.SourcePath
		}
		b.WriteString(v.styles.Subtitle.Render("Actions for: " + title))
		b.WriteString("\n\n")
	}

	for i, label := range actionLabels {
		if ActionOption(i) == v.menuSelected {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.docs
}

// Tag returns the active tag filter.
func (v *View) Tag() string {
	return v.tag
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.docs) {
		return &v.docs[v.selected]
	}
	return nil
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
