package templates

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for changes to settle before re-importing.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after each re-import with the imported count and any import error.
type ReloadFunc func(imported int, err error)

// Watcher re-imports a template directory whenever files below it change.
type Watcher struct {
	service  *Service
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload ReloadFunc
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the settle period. Non-positive values keep the default.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnReload registers a callback run after each re-import.
func OnReload(fn ReloadFunc) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithWatcherLogger sets a custom logger.
// Default is the service's logger.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher watches dir and every directory below it.
func NewWatcher(service *Service, dir string, opts ...WatcherOption) (*Watcher, error) {
	if service == nil {
		return nil, ErrRepositoryRequired
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		service:  service,
		dir:      dir,
		watcher:  fw,
		debounce: DefaultDebounce,
		logger:   service.logger.With("component", "template-watcher"),
	}
	for _, opt := range opts {
		opt(w)
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch template directory %s: %w", dir, err)
	}
	return w, nil
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("template watcher error", "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "dir", event.Name, "err", err)
			}
			w.schedule(ctx)
			return
		}
	}
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
		w.logger.Debug("template file changed", "file", event.Name, "op", event.Op.String())
		w.schedule(ctx)
	}
}

// schedule debounces rapid changes into a single re-import.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		n, err := w.service.Import(ctx, w.dir)
		if err != nil {
			w.logger.Warn("template re-import finished with errors", "imported", n, "err", err)
		}
		if w.onReload != nil {
			w.onReload(n, err)
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
