package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// DefaultDebounce is how long a path must be quiet before its change is applied.
const DefaultDebounce = 300 * time.Millisecond

// action is what a filesystem event asks the index to do.
type action int

const (
	actionNone action = iota
	actionIndex
	actionRemove
	actionWatchDir
)

// Watcher forwards workspace file changes to an ingestion service.
// Creates and writes are submitted; removes and renames delete the document.
// Bursts of events on one path are collapsed into a single update.
type Watcher struct {
	source   *Source
	sink     driving.IngestionService
	debounce time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
}

// NewWatcher creates a watcher for source feeding sink.
func NewWatcher(source *Source, sink driving.IngestionService) *Watcher {
	return &Watcher{
		source:   source,
		sink:     sink,
		debounce: DefaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
}

// SetDebounce sets the quiet period applied per path.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run watches the workspace until ctx is done. Pending updates are
// cancelled on return, and Run waits for in-flight updates to finish.
func (w *Watcher) Run(ctx context.Context) error {
	root := w.source.Root()
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("root path error: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, root); err != nil {
		return err
	}
	logger.Info("watching %s", root)

	defer w.drain()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopped watching %s", root)
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			switch w.classify(event) {
			case actionIndex, actionRemove:
				w.schedule(ctx, event.Name)
			case actionWatchDir:
				if err := w.addTree(fsw, event.Name); err != nil {
					logger.Warn("watch %s: %v", event.Name, err)
				}
			case actionNone:
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error: %v", err)
		}
	}
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// classify maps an event to an action. Directories created under the root
// are watched; hidden paths and unsupported file types are ignored.
func (w *Watcher) classify(event fsnotify.Event) action {
	rel, err := filepath.Rel(w.source.Root(), event.Name)
	if err != nil || isHidden(rel) {
		return actionNone
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if w.source.Indexable(event.Name) {
			return actionRemove
		}
		return actionNone
	}

	if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
		info, err := os.Stat(event.Name)
		if err != nil {
			return actionNone
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				return actionWatchDir
			}
			return actionNone
		}
		if w.source.Indexable(event.Name) {
			return actionIndex
		}
	}
	return actionNone
}

// schedule applies the change to path once it has been quiet for the
// debounce period. A newer event on the same path restarts the wait.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.apply(ctx, path)
	})
}

// apply indexes path if it exists and removes its document otherwise.
func (w *Watcher) apply(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := w.sink.Remove(ctx, path); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("remove %s: %v", path, err)
		}
		return
	}

	content, meta, err := w.source.Read(ctx, path)
	if err != nil {
		logger.Warn("read %s: %v", path, err)
		return
	}
	outcome, err := w.sink.Submit(ctx, path, content, meta)
	if err != nil {
		logger.Warn("index %s: %v", path, err)
		return
	}
	if !outcome.Skipped {
		logger.Info("re-indexed %s", path)
	}
}

// drain cancels pending updates and waits for in-flight ones.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.pending.Wait()
}
