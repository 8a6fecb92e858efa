// Package watch triggers regeneration when api.json or directive files
// change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the bursts of events editors and build tools emit
// for a single save.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called once per debounced batch with the changed files, sorted.
type Handler func(ctx context.Context, changed []string)

// Options configure a Watcher.
type Options struct {
	Debounce time.Duration
	// IgnoreDirs are directory base names that are not watched.
	IgnoreDirs []string
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{
		Debounce:   DefaultDebounce,
		IgnoreDirs: []string{"node_modules", ".git", "dist"},
	}
}

// Watcher watches a directory tree for changes to generator inputs.
//
// **Features:**
//   - Debouncing: all events within the debounce window form one batch
//   - New subdirectories are watched as they appear
//   - Handler runs are serialized; a batch arriving during a run waits
//
// **Usage:**
//
//	w, err := watch.New(handler, watch.DefaultOptions(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx, apiDir); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	fsw     *fsnotify.Watcher
	handler Handler
	options Options
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	runMu   sync.Mutex

	runs    atomic.Int64
	stopped atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a watcher calling handler for every batch of changes.
func New(handler Handler, options Options, logger *slog.Logger) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher needs a handler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	return &Watcher{
		fsw:     fsw,
		handler: handler,
		options: options,
		logger:  logger,
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
	}, nil
}

// IsInput reports whether path names a generator input file.
func IsInput(path string) bool {
	base := filepath.Base(path)
	return base == "api.json" || strings.HasSuffix(base, ".api.json") ||
		base == ".dtsgenrc" || strings.HasSuffix(base, ".dtsgenrc")
}

// Start watches root and its subdirectories until ctx is cancelled or Stop
// is called. It must be called at most once.
func (w *Watcher) Start(ctx context.Context, root string) error {
	if w.stopped.Load() {
		return errors.New("watcher already stopped")
	}
	if err := w.addTree(root); err != nil {
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	go w.eventLoop(ctx)
	w.logger.Info("watching for changes", "root", root, "debounce", w.options.Debounce)
	return nil
}

// Stop stops watching. Safe to call multiple times; a running handler is
// allowed to finish.
func (w *Watcher) Stop() error {
	if w.stopped.Swap(true) {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	w.runMu.Lock()
	defer w.runMu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return errors.Wrapf(err, "watching %s", root)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && slices.Contains(w.options.IgnoreDirs, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !IsInput(event.Name) || (event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write)) {
		return
	}
	w.logger.Debug("input changed", "op", event.Op.String(), "file", event.Name)
	w.schedule(ctx, event.Name)
}

// schedule adds path to the pending batch and restarts the debounce timer.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, func() { w.flush(ctx) })
}

func (w *Watcher) flush(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	clear(w.pending)
	w.mu.Unlock()

	if len(changed) == 0 || ctx.Err() != nil {
		return
	}
	sort.Strings(changed)
	w.runs.Add(1)
	w.logger.Info("regenerating after change", "files", len(changed))
	w.handler(ctx, changed)
}

// Stats reports watcher state.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	return Stats{
		Pending:   pending,
		Runs:      w.runs.Load(),
		IsRunning: w.cancel != nil && !w.stopped.Load(),
	}
}

// Stats contains watcher statistics.
type Stats struct {
	Pending   int
	Runs      int64
	IsRunning bool
}
