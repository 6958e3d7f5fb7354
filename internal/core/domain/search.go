package domain

import "time"

// SearchMethod identifies how a result set was produced.
type SearchMethod string

// Available search methods.
const (
	// SearchMethodHybrid combines semantic and keyword scores.
	SearchMethodHybrid SearchMethod = "hybrid"

	// SearchMethodSemantic uses vector similarity only.
	SearchMethodSemantic SearchMethod = "semantic"

	// SearchMethodKeyword uses keyword-frequency scoring only.
	SearchMethodKeyword SearchMethod = "keyword"
)

// IsValid returns true if the search method is recognised.
func (m SearchMethod) IsValid() bool {
	switch m {
	case SearchMethodHybrid, SearchMethodSemantic, SearchMethodKeyword:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m SearchMethod) String() string {
	return string(m)
}

// ScoredDocument is a single ranked search hit.
type ScoredDocument struct {
	// Document is the matched document.
	Document Document

	// Score is the final relevance score.
	Score float64

	// SemanticScore is the raw cosine similarity, zero when absent from the semantic set.
	SemanticScore float64

	// KeywordScore is the raw keyword score, zero when absent from the keyword set.
	KeywordScore float64

	// Highlights contains sentences that mention query terms.
	Highlights []string
}

// HybridOptions configures one hybrid search.
type HybridOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// SemanticWeight scales the semantic contribution.
	SemanticWeight float64

	// KeywordWeight scales the keyword contribution.
	KeywordWeight float64

	// Threshold drops results whose final score is below it. Zero disables the cut.
	Threshold float64
}

// RetrievalContext is the per-query bundle of retrieved documents.
// It is transient and never persisted.
type RetrievalContext struct {
	// Query is the originating (normalised) query text.
	Query string

	// Documents are the retrieved documents in rank order.
	Documents []ScoredDocument

	// Elapsed is the time spent searching.
	Elapsed time.Duration

	// Method is the search method that produced Documents.
	Method SearchMethod
}

// IsEmpty reports whether no documents were retrieved.
func (c *RetrievalContext) IsEmpty() bool {
	return c == nil || len(c.Documents) == 0
}

// QueryState is one state of the per-query orchestration machine.
type QueryState string

// Orchestration states.
const (
	StateStart         QueryState = "start"
	StateExtractQuery  QueryState = "extract_query"
	StateRetrieve      QueryState = "retrieve"
	StateValidate      QueryState = "validate"
	StateErrorFallback QueryState = "error_fallback"
	StateInjectContext QueryState = "inject_context"
	StateGenerate      QueryState = "generate"
	StateDone          QueryState = "done"
)

// QueryResponse is returned to the UI/CLI layer for one query.
type QueryResponse struct {
	// AnswerText is the generated answer.
	AnswerText string `json:"answerText"`

	// ContextUsed is false when no context was found and generation ran without it.
	ContextUsed bool `json:"contextUsed"`

	// RetrievedCount is the number of documents injected into the prompt.
	RetrievedCount int `json:"retrievedCount"`

	// SearchTimeMs is the total time spent in retrieval.
	SearchTimeMs int64 `json:"searchTimeMs"`

	// Method is the search method of the context that was used.
	Method SearchMethod `json:"method,omitempty"`

	// FallbackUsed is true when the retrieval fallback ladder ran.
	FallbackUsed bool `json:"fallbackUsed"`

	// GenerationFailed is true when the generator errored and AnswerText
	// holds the rendered context instead of a generated answer.
	GenerationFailed bool `json:"generationFailed"`

	// Sources lists the source paths of injected documents.
	Sources []string `json:"sources,omitempty"`

	// States is the ordered trace of visited orchestration states.
	States []QueryState `json:"states,omitempty"`
}

// SearchPattern records a historical (query, result set) outcome.
type SearchPattern struct {
	// ID is the unique identifier of the pattern row.
	ID string

	// Query is the normalised query text.
	Query string

	// ResultFiles is the sorted set of result source paths.
	ResultFiles []string

	// SuccessCount is how many occurrences were successful.
	SuccessCount int

	// TotalCount is how many times the pattern occurred.
	TotalCount int

	// LastUsed is when the pattern last occurred.
	LastUsed time.Time

	// CreatedAt is when the pattern first occurred.
	CreatedAt time.Time
}

// SuccessRate returns SuccessCount / TotalCount, or zero when unused.
func (p SearchPattern) SuccessRate() float64 {
	if p.TotalCount == 0 {
		return 0
	}
	return float64(p.SuccessCount) / float64(p.TotalCount)
}

// Suggestion is a past query offered for reuse.
type Suggestion struct {
	Query       string
	ResultFiles []string
	SuccessRate float64
	LastUsed    time.Time
}

// TopicLocation maps a recurring query topic to the locations that answered it.
type TopicLocation struct {
	Topic       string
	Locations   []string
	Occurrences int
}
