// Package tui provides an interactive terminal user interface for recall.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Retrieval ranks documents for the search view.
	Retrieval driving.RetrievalService

	// Query answers questions for the ask view.
	Query driving.QueryService

	// Document reads indexed documents.
	Document driving.DocumentService

	// Sync re-indexes documents on request.
	Sync driving.SyncService

	// SearchOptions are the hybrid options used by the search view.
	SearchOptions domain.HybridOptions
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
