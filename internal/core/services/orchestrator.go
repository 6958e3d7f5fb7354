package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.QueryService = (*Orchestrator)(nil)

// noContextAnswer is returned in place of generation when nothing was retrieved.
const noContextAnswer = "No relevant notes were found."

// Orchestrator runs every query through retrieval before generation.
// Retrieval failures are recovered by a fallback ladder and reported through
// QueryResponse.ContextUsed rather than as errors. Generation failures fall
// back to answering with the rendered context.
type Orchestrator struct {
	retriever driving.RetrievalService
	generator driven.Generator
	settings  domain.RetrievalSettings

	memory *SearchMemory
	store  driven.DocumentStore

	successes atomic.Int64
	failures  atomic.Int64

	now func() time.Time
}

// NewOrchestrator creates a query orchestrator. The generator may be nil, in
// which case the rendered context is returned as the answer.
func NewOrchestrator(
	retriever driving.RetrievalService,
	generator driven.Generator,
	settings domain.RetrievalSettings,
) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		generator: generator,
		settings:  settings,
		now:       time.Now,
	}
}

// SetSearchMemory records every completed retrieval in memory.
func (o *Orchestrator) SetSearchMemory(memory *SearchMemory) {
	o.memory = memory
}

// SetDocumentStore enables access tracking of documents handed to generation.
func (o *Orchestrator) SetDocumentStore(store driven.DocumentStore) {
	o.store = store
}

// RetrievalStats returns the number of successful and failed primary retrievals.
func (o *Orchestrator) RetrievalStats() (successes, failures int64) {
	return o.successes.Load(), o.failures.Load()
}

// queryRun tracks one pass through the state machine.
type queryRun struct {
	resp    *domain.QueryResponse
	elapsed time.Duration
}

func (r *queryRun) enter(s domain.QueryState) {
	logger.Debug("query state: %s", s)
	r.resp.States = append(r.resp.States, s)
}

// Query retrieves context for text and forwards it to generation.
func (o *Orchestrator) Query(ctx context.Context, text string) (*domain.QueryResponse, error) {
	logger.Section("Query")
	run := &queryRun{resp: &domain.QueryResponse{}}
	run.enter(domain.StateStart)

	run.enter(domain.StateExtractQuery)
	query := ExtractQuery(text)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	run.enter(domain.StateRetrieve)
	rc, err := o.Retrieve(ctx, query)
	if rc != nil {
		run.elapsed += rc.Elapsed
	}
	switch {
	case errors.Is(err, domain.ErrDimensionMismatch):
		return nil, err
	case err != nil:
		logger.Warn("retrieval failed: %v", err)
		rc = o.fallback(ctx, run, query)
	default:
		run.enter(domain.StateValidate)
		if !o.Validate(rc) {
			rc = o.fallback(ctx, run, query)
		}
	}

	o.remember(ctx, rc)

	run.enter(domain.StateInjectContext)
	rendered := o.InjectContext(rc)
	resp := run.resp
	resp.ContextUsed = !rc.IsEmpty()
	resp.RetrievedCount = len(rc.Documents)
	resp.SearchTimeMs = run.elapsed.Milliseconds()
	resp.Method = rc.Method
	for _, d := range rc.Documents {
		resp.Sources = append(resp.Sources, d.Document.SourcePath)
	}

	run.enter(domain.StateGenerate)
	answer, err := o.generate(ctx, strings.TrimSpace(text), rendered)
	if err != nil {
		logger.Warn("generation failed, answering with retrieved context: %v", err)
		run.enter(domain.StateErrorFallback)
		resp.GenerationFailed = true
		answer = contextAnswer(rendered)
	}
	resp.AnswerText = answer

	run.enter(domain.StateDone)
	logger.Info("query answered: context=%t docs=%d method=%s fallback=%t",
		resp.ContextUsed, resp.RetrievedCount, resp.Method, resp.FallbackUsed)
	return resp, nil
}

// Retrieve runs the primary hybrid search bounded by the search timeout.
// Timeouts are reported as domain.ErrRetrievalTimeout. Store integrity
// errors such as domain.ErrDimensionMismatch are returned unchanged and
// every other failure as domain.ErrRetrievalFailure.
func (o *Orchestrator) Retrieve(ctx context.Context, query string) (*domain.RetrievalContext, error) {
	rc, err := o.search(ctx, query, o.primaryMethod(), func(ctx context.Context) ([]domain.ScoredDocument, error) {
		return o.retriever.HybridSearch(ctx, query, o.settings.HybridOptions())
	})
	if err != nil {
		o.failures.Add(1)
		return rc, err
	}
	o.successes.Add(1)
	return rc, nil
}

// Validate reports whether rc is acceptable context. A result count below
// RequireMinimumResults is only logged. Empty context is rejected unless
// AllowEmptyContext is set.
func (o *Orchestrator) Validate(rc *domain.RetrievalContext) bool {
	n := 0
	if rc != nil {
		n = len(rc.Documents)
	}
	if n < o.settings.RequireMinimumResults {
		logger.Warn("retrieved %d documents, fewer than the %d required", n, o.settings.RequireMinimumResults)
	}
	if n == 0 && !o.settings.AllowEmptyContext {
		logger.Warn("empty context is not allowed, running fallback")
		return false
	}
	return true
}

// InjectContext renders rc in the configured format, bounded by the
// configured maximum context length.
func (o *Orchestrator) InjectContext(rc *domain.RetrievalContext) string {
	return RenderContext(rc, o.settings.ContextFormat, o.settings.MaxContextLength)
}

// fallback retries with keyword-only search. When that fails or finds
// nothing, an explicitly empty context is returned.
func (o *Orchestrator) fallback(ctx context.Context, run *queryRun, query string) *domain.RetrievalContext {
	run.enter(domain.StateErrorFallback)
	run.resp.FallbackUsed = true

	limit := o.settings.MaxResults
	rc, err := o.search(ctx, query, domain.SearchMethodKeyword, func(ctx context.Context) ([]domain.ScoredDocument, error) {
		return o.retriever.KeywordSearch(ctx, query, limit)
	})
	if rc != nil {
		run.elapsed += rc.Elapsed
	}
	if err != nil {
		logger.Warn("keyword fallback failed: %v", err)
		return &domain.RetrievalContext{Query: query, Method: domain.SearchMethodKeyword}
	}
	if rc.IsEmpty() {
		logger.Warn("keyword fallback found nothing, generating without context")
	}
	return rc
}

// search runs fn with the search timeout. fn runs in its own goroutine so a
// search that ignores its context still cannot block the query past the timeout.
func (o *Orchestrator) search(
	ctx context.Context,
	query string,
	method domain.SearchMethod,
	fn func(context.Context) ([]domain.ScoredDocument, error),
) (*domain.RetrievalContext, error) {
	ctx, cancel := context.WithTimeout(ctx, o.settings.SearchTimeout)
	defer cancel()

	type result struct {
		docs []domain.ScoredDocument
		err  error
	}
	done := make(chan result, 1)
	start := o.now()

	go func() {
		docs, err := fn(ctx)
		done <- result{docs, err}
	}()

	rc := &domain.RetrievalContext{Query: query, Method: method}
	select {
	case <-ctx.Done():
		rc.Elapsed = o.now().Sub(start)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return rc, fmt.Errorf("%w after %s", domain.ErrRetrievalTimeout, o.settings.SearchTimeout)
		}
		return rc, fmt.Errorf("%w: %w", domain.ErrRetrievalFailure, ctx.Err())
	case res := <-done:
		rc.Elapsed = o.now().Sub(start)
		if res.err != nil {
			if errors.Is(res.err, domain.ErrDimensionMismatch) {
				return rc, res.err
			}
			if errors.Is(res.err, context.DeadlineExceeded) {
				return rc, fmt.Errorf("%w: %w", domain.ErrRetrievalTimeout, res.err)
			}
			return rc, fmt.Errorf("%w: %w", domain.ErrRetrievalFailure, res.err)
		}
		rc.Documents = res.docs
		return rc, nil
	}
}

// primaryMethod names the search method implied by the configured weights.
func (o *Orchestrator) primaryMethod() domain.SearchMethod {
	switch {
	case o.settings.KeywordWeight == 0:
		return domain.SearchMethodSemantic
	case o.settings.SemanticWeight == 0:
		return domain.SearchMethodKeyword
	default:
		return domain.SearchMethodHybrid
	}
}

// remember records the retrieval in search memory and bumps access counters.
// Failures here never fail the query.
func (o *Orchestrator) remember(ctx context.Context, rc *domain.RetrievalContext) {
	files := make([]string, 0, len(rc.Documents))
	ids := make([]string, 0, len(rc.Documents))
	for _, d := range rc.Documents {
		files = append(files, d.Document.SourcePath)
		ids = append(ids, d.Document.ID)
	}

	if o.memory != nil {
		if err := o.memory.Record(ctx, rc.Query, files, len(files) > 0); err != nil {
			logger.Warn("record search pattern: %v", err)
		}
	}
	if o.store != nil && len(ids) > 0 {
		if err := o.store.RecordAccess(ctx, ids, o.now()); err != nil {
			logger.Warn("record access: %v", err)
		}
	}
}

func (o *Orchestrator) generate(ctx context.Context, prompt, rendered string) (string, error) {
	if o.generator == nil {
		logger.Debug("no generator configured, returning context")
		return contextAnswer(rendered), nil
	}

	answer, err := o.generator.Generate(ctx, prompt, rendered)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return answer, nil
}

// contextAnswer answers with the rendered context itself.
func contextAnswer(rendered string) string {
	if rendered == "" {
		return noContextAnswer
	}
	return rendered
}

// MaxQueryLength is the maximum number of runes in an extracted query.
const MaxQueryLength = 200

// ExtractQuery normalises a user message into search query text.
// Apostrophes are dropped, other punctuation and symbols become spaces,
// whitespace is collapsed and the result is cut to MaxQueryLength runes.
func ExtractQuery(message string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return -1
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			return ' '
		default:
			return r
		}
	}, message)

	runes := []rune(strings.Join(strings.Fields(cleaned), " "))
	if len(runes) > MaxQueryLength {
		runes = runes[:MaxQueryLength]
	}
	return strings.TrimSpace(string(runes))
}
