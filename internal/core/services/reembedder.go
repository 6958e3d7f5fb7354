package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/logger"
)

// Reembedder re-embeds documents whose stored embedding was produced by a
// different provider than the active one. It runs as a background job
// triggered by ProviderChanged events, or synchronously through Run.
type Reembedder struct {
	engine *RetrievalEngine
	store  driven.DocumentStore

	// OnDone, when set, receives the report of every background job.
	OnDone func(domain.ReembedReport)

	mu      sync.Mutex
	running bool
	trigger chan domain.ProviderChanged
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewReembedder creates a re-embedder and subscribes it to provider changes
// of engine.
func NewReembedder(engine *RetrievalEngine, store driven.DocumentStore) *Reembedder {
	r := &Reembedder{
		engine:  engine,
		store:   store,
		trigger: make(chan domain.ProviderChanged, 1),
	}
	engine.OnProviderChanged(r.Trigger)
	return r
}

// Trigger queues a background job. Events arriving while a job is already
// queued are coalesced into it, since one job covers every stale document.
func (r *Reembedder) Trigger(evt domain.ProviderChanged) {
	select {
	case r.trigger <- evt:
		logger.Debug("re-embed queued for provider %s", evt.To)
	default:
		logger.Debug("re-embed already queued, coalescing provider %s", evt.To)
	}
}

// Start runs the background worker until Stop is called or ctx is done.
func (r *Reembedder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})

	r.wg.Add(1)
	go r.loop(ctx, r.stopCh)
}

// Stop signals the worker to exit and waits for any running job to finish.
func (r *Reembedder) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reembedder) loop(ctx context.Context, stop <-chan struct{}) {
	defer r.wg.Done()

	// Jobs are cancelled when the worker is stopped.
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-jobCtx.Done():
		}
	}()

	for {
		select {
		case <-jobCtx.Done():
			return
		case evt := <-r.trigger:
			logger.Info("re-embedding corpus after provider change %q -> %q", evt.From, evt.To)
			report, err := r.Run(jobCtx)
			if err != nil {
				logger.Warn("re-embed job %s: %v", report.JobID, err)
			}
			if r.OnDone != nil {
				r.OnDone(report)
			}
		}
	}
}

// Run re-embeds every stale document with the active provider and returns a
// report. Per-document failures are counted, not returned.
func (r *Reembedder) Run(ctx context.Context) (domain.ReembedReport, error) {
	provider := r.engine.Provider().Name()
	report := domain.ReembedReport{JobID: uuid.NewString(), Provider: provider}

	stale, err := r.store.ListStale(ctx, provider)
	if err != nil {
		return report, fmt.Errorf("list stale documents: %w", err)
	}
	report.Total = len(stale)
	logger.Debug("re-embed job %s: %d stale documents for %s", report.JobID, len(stale), provider)

	for _, id := range stale {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := r.engine.ReembedDocument(ctx, id); err != nil {
			logger.Warn("re-embed %s: %v", id, err)
			report.Failed++
			continue
		}
		report.Done++
	}

	logger.Info("re-embed job %s: %d/%d documents re-embedded, %d failed",
		report.JobID, report.Done, report.Total, report.Failed)
	return report, nil
}
