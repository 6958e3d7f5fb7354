package mcp

import (
	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval ranks documents for the search tool.
	Retrieval driving.RetrievalService

	// Query answers questions with mandatory retrieval.
	Query driving.QueryService

	// Sync indexes the workspace on request.
	Sync driving.SyncService

	// Document exposes indexed documents as resources.
	Document driving.DocumentService

	// Memory exposes past query outcomes.
	Memory driving.SearchMemoryService

	// SearchOptions are the hybrid defaults for the search tool.
	// Zero values fall back to the default retrieval settings.
	SearchOptions domain.HybridOptions
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

// searchOptions returns the configured hybrid options with defaults filled in.
func (p *Ports) searchOptions() domain.HybridOptions {
	opts := p.SearchOptions
	if opts.Limit <= 0 && opts.SemanticWeight == 0 && opts.KeywordWeight == 0 {
		return domain.DefaultRetrievalSettings().HybridOptions()
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultRetrievalSettings().HybridOptions().Limit
	}
	return opts
}
