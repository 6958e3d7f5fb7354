package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// Ensure WorkspaceService implements the interface.
var _ driving.WorkspaceService = (*WorkspaceService)(nil)

// WorkspaceService executes file and tool operations inside a workspace root.
// Files written through it are re-indexed immediately.
type WorkspaceService struct {
	source   driven.DocumentSource
	indexer  *Indexer
	engine   driving.RetrievalService
	syncer   driving.SyncService
	settings domain.RetrievalSettings
}

// NewWorkspaceService creates a workspace service.
func NewWorkspaceService(
	source driven.DocumentSource,
	indexer *Indexer,
	engine driving.RetrievalService,
	syncer driving.SyncService,
	settings domain.RetrievalSettings,
) *WorkspaceService {
	return &WorkspaceService{
		source:   source,
		indexer:  indexer,
		engine:   engine,
		syncer:   syncer,
		settings: settings,
	}
}

// Execute runs one operation against the workspace.
func (w *WorkspaceService) Execute(ctx context.Context, op domain.Operation) (*domain.OperationResult, error) {
	if op == nil {
		return nil, fmt.Errorf("%w: nil operation", domain.ErrInvalidInput)
	}
	logger.Debug("workspace op: %s", op.Kind())

	switch op := op.(type) {
	case domain.ReadOp:
		return w.read(op)
	case domain.WriteOp:
		return w.write(ctx, op.Path, op.Content, op.Tags, domain.OpWrite)
	case domain.AppendOp:
		return w.appendTo(ctx, op)
	case domain.UpdateSectionOp:
		return w.updateSection(ctx, op)
	case domain.CreateFolderOp:
		return w.createFolder(op)
	case domain.ListOp:
		return w.list(op)
	case domain.ToolCallOp:
		return w.toolCall(ctx, op)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedOperation, op.Kind())
	}
}

// resolve maps a workspace-relative path to a path under the root.
// Absolute paths and paths escaping the root are rejected.
func (w *WorkspaceService) resolve(rel string) (string, error) {
	if rel == "" || rel == "." {
		return w.source.Root(), nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("%w: path %q is outside the workspace", domain.ErrInvalidInput, rel)
	}
	return filepath.Join(w.source.Root(), cleaned), nil
}

func (w *WorkspaceService) read(op domain.ReadOp) (*domain.OperationResult, error) {
	path, err := w.resolve(op.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, op.Path)
		}
		return nil, fmt.Errorf("read %s: %w", op.Path, err)
	}
	return &domain.OperationResult{Kind: domain.OpRead, Path: path, Content: string(data)}, nil
}

func (w *WorkspaceService) write(ctx context.Context, rel, content string, tags []string, kind domain.OperationKind) (*domain.OperationResult, error) {
	path, err := w.resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", rel, err)
	}

	result := &domain.OperationResult{Kind: kind, Path: path, Content: content}
	reindexed, err := w.reindex(ctx, path, tags)
	if err != nil {
		return result, err
	}
	result.Reindexed = reindexed
	return result, nil
}

// reindex indexes path when it has a supported file type.
func (w *WorkspaceService) reindex(ctx context.Context, path string, tags []string) (bool, error) {
	if !w.source.Indexable(path) {
		return false, nil
	}
	content, meta, err := w.source.Read(ctx, path)
	if err != nil {
		return false, fmt.Errorf("read %s for indexing: %w", path, err)
	}
	if tags != nil {
		meta.Tags = tags
	}
	if _, err := w.indexer.Submit(ctx, path, content, meta); err != nil {
		return false, fmt.Errorf("index %s: %w", path, err)
	}
	return true, nil
}

func (w *WorkspaceService) existing(rel string) (string, error) {
	path, err := w.resolve(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

func (w *WorkspaceService) appendTo(ctx context.Context, op domain.AppendOp) (*domain.OperationResult, error) {
	current, err := w.existing(op.Path)
	if err != nil {
		return nil, err
	}
	return w.write(ctx, op.Path, MergeContent(current, op.Content), nil, domain.OpAppend)
}

func (w *WorkspaceService) updateSection(ctx context.Context, op domain.UpdateSectionOp) (*domain.OperationResult, error) {
	if strings.TrimSpace(op.Heading) == "" {
		return nil, fmt.Errorf("%w: heading is required", domain.ErrInvalidInput)
	}
	current, err := w.existing(op.Path)
	if err != nil {
		return nil, err
	}
	return w.write(ctx, op.Path, UpdateSection(current, op.Heading, op.Content), nil, domain.OpUpdateSection)
}

func (w *WorkspaceService) createFolder(op domain.CreateFolderOp) (*domain.OperationResult, error) {
	path, err := w.resolve(op.Path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", op.Path, err)
	}
	return &domain.OperationResult{Kind: domain.OpCreateFolder, Path: path}, nil
}

func (w *WorkspaceService) list(op domain.ListOp) (*domain.OperationResult, error) {
	path, err := w.resolve(op.Path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, op.Path)
		}
		return nil, fmt.Errorf("list %s: %w", op.Path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return &domain.OperationResult{Kind: domain.OpList, Path: path, Entries: names}, nil
}

func (w *WorkspaceService) toolCall(ctx context.Context, op domain.ToolCallOp) (*domain.OperationResult, error) {
	switch op.Name {
	case domain.ToolSearch:
		query, _ := op.Args["query"].(string)
		if strings.TrimSpace(query) == "" {
			return nil, fmt.Errorf("%w: search requires a query", domain.ErrInvalidInput)
		}
		opts := w.settings.HybridOptions()
		if limit := intArg(op.Args, "limit"); limit > 0 {
			opts.Limit = limit
		}
		results, err := w.engine.HybridSearch(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		return &domain.OperationResult{Kind: domain.OpToolCall, Content: query, Results: results}, nil

	case domain.ToolReindex:
		rel, _ := op.Args["path"].(string)
		if rel == "" {
			report, err := w.syncer.Sync(ctx)
			if err != nil {
				return nil, err
			}
			return &domain.OperationResult{
				Kind:      domain.OpToolCall,
				Content:   fmt.Sprintf("%d indexed, %d unchanged, %d failed, %d removed", report.Indexed, report.Skipped, report.Failed, report.Removed),
				Reindexed: report.Indexed > 0,
			}, nil
		}
		path, err := w.resolve(rel)
		if err != nil {
			return nil, err
		}
		reindexed, err := w.reindex(ctx, path, nil)
		if err != nil {
			return nil, err
		}
		return &domain.OperationResult{Kind: domain.OpToolCall, Path: path, Reindexed: reindexed}, nil

	default:
		return nil, fmt.Errorf("%w: tool %q", domain.ErrUnsupportedOperation, op.Name)
	}
}

// intArg reads an integer argument that may have been decoded from JSON.
func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
