// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.ScoredDocument
	Err     error
}

// AnswerCompleted carries an answer from the query pipeline.
type AnswerCompleted struct {
	Question string
	Response *domain.QueryResponse
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewDocuments lists indexed documents.
	ViewDocuments
	// ViewDocContent shows document content.
	ViewDocContent
	// ViewDocDetails shows document metadata.
	ViewDocDetails
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewAsk:
		return "ask"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewDocDetails:
		return "doc_details"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// StatusMessage shows a transient message in the active view.
type StatusMessage struct {
	Text string
}

// DocumentsLoaded carries the list of indexed documents.
type DocumentsLoaded struct {
	Tag       string
	Documents []domain.Document
	Err       error
}

// DocumentSelected signals a document was selected for reading.
// Back is the view to return to.
type DocumentSelected struct {
	Document domain.Document
	Back     ViewType
}

// DocumentDetailsLoaded carries the index metadata of a document.
type DocumentDetailsLoaded struct {
	DocumentID string
	Details    *driving.DocumentDetails
	Err        error
}

// DocumentRefreshed signals a document was re-indexed from disk.
type DocumentRefreshed struct {
	DocumentID string
	Report     *domain.BatchReport
	Err        error
}

// StatsLoaded carries index statistics for the menu summary.
type StatsLoaded struct {
	Stats *domain.StoreStats
	Err   error
}
