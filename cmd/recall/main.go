// Command recall indexes a folder of notes and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/recall/internal/adapters/driven/ai"
	"github.com/custodia-labs/recall/internal/adapters/driven/config/file"
	"github.com/custodia-labs/recall/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/recall/internal/adapters/driving/cli"
	"github.com/custodia-labs/recall/internal/connectors/filesystem"
	"github.com/custodia-labs/recall/internal/core/services"
	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the services for the workspace at dir.
func bootstrap(ctx context.Context, dir string, settingsOnly bool) (*cli.Services, func(), error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve workspace: %w", err)
	}
	stateDir := filepath.Join(root, filesystem.StateDir)

	configStore, err := file.NewConfigStore(stateDir)
	if err != nil {
		return nil, nil, err
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	if settingsOnly {
		return &cli.Services{Settings: settingsService}, func() {}, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, err
	}
	if err := settingsService.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w. Run 'recall settings' to fix", err)
	}

	store, err := sqlite.NewStore(stateDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open index: %w", err)
	}
	aiResult, err := ai.Initialise(settings, file.NewPromptStore(filepath.Join(stateDir, "prompts")))
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	docs := store.DocumentStore()
	engine := services.NewRetrievalEngine(docs, aiResult.Embedding, chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	))
	indexer := services.NewIndexer(engine, docs, 0)

	source := filesystem.New(root)
	syncService := services.NewSyncService(source, docs, indexer)

	memory := services.NewSearchMemory(store.PatternStore(), services.MemoryConfig{})
	orchestrator := services.NewOrchestrator(engine, aiResult.Generator, settings.Retrieval)
	orchestrator.SetSearchMemory(memory)
	orchestrator.SetDocumentStore(docs)

	reembedder := services.NewReembedder(engine, docs)
	reembedder.Start(ctx)

	evt, changed, err := engine.ReconcileProvider(ctx)
	switch {
	case err != nil:
		logger.Warn("check embedding provider: %v", err)
	case changed:
		logger.Info("re-embedding documents from %s with %s in the background; "+
			"unfinished work resumes on the next run or with 'recall reembed'", evt.From, evt.To)
	}

	svc := &cli.Services{
		Query:      orchestrator,
		Retrieval:  engine,
		Sync:       syncService,
		Ingestion:  indexer,
		Document:   services.NewDocumentService(docs),
		Memory:     memory,
		Workspace:  services.NewWorkspaceService(source, indexer, engine, syncService, settings.Retrieval),
		Settings:   settingsService,
		Watcher:    filesystem.NewWatcher(source, indexer),
		Reembedder: reembedder,
	}

	cleanup := func() {
		reembedder.Stop()
		aiResult.Close()
		if err := store.Close(); err != nil {
			logger.Warn("closing index: %v", err)
		}
	}
	return svc, cleanup, nil
}
