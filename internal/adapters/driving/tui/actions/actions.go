// Package actions provides document commands shared by the TUI views.
package actions

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// ErrNoDocumentService is returned by commands run without a document service.
var ErrNoDocumentService = errors.New("document service not available")

// ReadDocument loads the full document by ID and selects it for reading.
func ReadDocument(ctx context.Context, docs driving.DocumentService, id string, back messages.ViewType) tea.Cmd {
	return func() tea.Msg {
		if docs == nil {
			return messages.ErrorOccurred{Err: ErrNoDocumentService}
		}
		doc, err := docs.Get(ctx, id)
		if err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.DocumentSelected{Document: *doc, Back: back}
	}
}

// LoadDetails loads the index metadata for a document.
func LoadDetails(ctx context.Context, docs driving.DocumentService, id string) tea.Cmd {
	return func() tea.Msg {
		if docs == nil {
			return messages.DocumentDetailsLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}
		details, err := docs.Details(ctx, id)
		return messages.DocumentDetailsLoaded{DocumentID: id, Details: details, Err: err}
	}
}

// OpenDocument opens a document in the default application.
func OpenDocument(ctx context.Context, docs driving.DocumentService, id string) tea.Cmd {
	return func() tea.Msg {
		if docs == nil {
			return messages.ErrorOccurred{Err: ErrNoDocumentService}
		}
		if err := docs.Open(ctx, id); err != nil {
			return messages.ErrorOccurred{Err: err}
		}
		return messages.StatusMessage{Text: "Opening document..."}
	}
}

// RefreshDocument re-indexes the file behind a document.
func RefreshDocument(ctx context.Context, sync driving.SyncService, id, path string) tea.Cmd {
	return func() tea.Msg {
		if sync == nil {
			return messages.DocumentRefreshed{DocumentID: id, Err: errors.New("sync service not available")}
		}
		report, err := sync.IndexPaths(ctx, []string{path})
		if err == nil && report.Failed > 0 && len(report.Outcomes) > 0 {
			err = report.Outcomes[0].Err
		}
		return messages.DocumentRefreshed{DocumentID: id, Report: report, Err: err}
	}
}
