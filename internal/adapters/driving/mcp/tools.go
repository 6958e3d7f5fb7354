package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find notes"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default from settings)"`
	Mode  string `json:"mode,omitempty" jsonschema:"ranking to use: hybrid (default), semantic or keyword"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID    string   `json:"document_id"`
	Title         string   `json:"title"`
	Path          string   `json:"path"`
	URI           string   `json:"uri"`
	Score         float64  `json:"score"`
	SemanticScore float64  `json:"semantic_score"`
	KeywordScore  float64  `json:"keyword_score"`
	Tags          []string `json:"tags,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed notes"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer           string   `json:"answer"`
	ContextUsed      bool     `json:"context_used"`
	FallbackUsed     bool     `json:"fallback_used"`
	GenerationFailed bool     `json:"generation_failed"`
	RetrievedCount   int      `json:"retrieved_count"`
	Method           string   `json:"method,omitempty"`
	Sources          []string `json:"sources,omitempty"`
}

// IndexInput is the input schema for the index tool.
type IndexInput struct {
	Paths []string `json:"paths,omitempty" jsonschema:"files to index; the whole workspace is synchronised when empty"`
}

// IndexOutput is the output schema for the index tool.
type IndexOutput struct {
	Indexed int      `json:"indexed"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Removed int      `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Query string `json:"query" jsonschema:"the query to find related past searches for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of suggestions (default 5)"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	Suggestions []SuggestionOutput `json:"suggestions"`
}

// SuggestionOutput is one past query and where it found answers.
type SuggestionOutput struct {
	Query       string   `json:"query"`
	ResultFiles []string `json:"result_files,omitempty"`
	SuccessRate float64  `json:"success_rate"`
}

const defaultSuggestLimit = 5

// registerTools registers the tool handlers for the configured ports.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search indexed notes by meaning and keywords",
	}, s.handleSearch)

	if s.ports.Query != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only retrieved notes as context",
		}, s.handleAsk)
	}

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index",
			Description: "Index changed notes in the workspace, or the given files",
		}, s.handleIndex)
	}

	if s.ports.Memory != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "suggest",
			Description: "Suggest related past queries and the files that answered them",
		}, s.handleSuggest)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := s.ports.searchOptions()
	if input.Limit > 0 {
		opts.Limit = input.Limit
	}

	var (
		results []domain.ScoredDocument
		err     error
	)
	switch domain.SearchMethod(input.Mode) {
	case "", domain.SearchMethodHybrid:
		results, err = s.ports.Retrieval.HybridSearch(ctx, input.Query, opts)
	case domain.SearchMethodSemantic:
		results, err = s.ports.Retrieval.SemanticSearch(ctx, input.Query, opts.Limit)
	case domain.SearchMethodKeyword:
		results, err = s.ports.Retrieval.KeywordSearch(ctx, input.Query, opts.Limit)
	default:
		return nil, SearchOutput{}, fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, input.Mode)
	}
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		doc := results[i].Document
		output.Results[i] = SearchResultOutput{
			DocumentID:    doc.ID,
			Title:         doc.Title,
			Path:          doc.SourcePath,
			URI:           documentURI(doc.ID),
			Score:         results[i].Score,
			SemanticScore: results[i].SemanticScore,
			KeywordScore:  results[i].KeywordScore,
			Tags:          doc.Tags,
			Highlights:    results[i].Highlights,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	resp, err := s.ports.Query.Query(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:           resp.AnswerText,
		ContextUsed:      resp.ContextUsed,
		FallbackUsed:     resp.FallbackUsed,
		GenerationFailed: resp.GenerationFailed,
		RetrievedCount:   resp.RetrievedCount,
		Method:           resp.Method.String(),
		Sources:          resp.Sources,
	}, nil
}

// handleIndex handles the index tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	var (
		report *domain.BatchReport
		err    error
	)
	if len(input.Paths) == 0 {
		report, err = s.ports.Sync.Sync(ctx)
	} else {
		report, err = s.ports.Sync.IndexPaths(ctx, input.Paths)
	}
	if err != nil {
		return nil, IndexOutput{}, err
	}

	output := IndexOutput{
		Indexed: report.Indexed,
		Skipped: report.Skipped,
		Failed:  report.Failed,
		Removed: report.Removed,
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			output.Errors = append(output.Errors, fmt.Sprintf("%s: %v", o.Path, o.Err))
		}
	}
	return nil, output, nil
}

// handleSuggest handles the suggest tool invocation.
func (s *Server) handleSuggest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	suggestions, err := s.ports.Memory.Suggest(ctx, input.Query, limit)
	if err != nil {
		return nil, SuggestOutput{}, err
	}

	output := SuggestOutput{Suggestions: make([]SuggestionOutput, len(suggestions))}
	for i, sg := range suggestions {
		output.Suggestions[i] = SuggestionOutput{
			Query:       sg.Query,
			ResultFiles: sg.ResultFiles,
			SuccessRate: sg.SuccessRate,
		}
	}
	return nil, output, nil
}
