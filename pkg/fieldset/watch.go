package fieldset

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a configuration directory when its files change.
type Watcher struct {
	dir      string
	logger   *zap.Logger
	debounce time.Duration
	onReload func(*Catalog)
}

// WatchOption customises a Watcher.
type WatchOption func(*Watcher)

func WithWatchLogger(logger *zap.Logger) WatchOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher returns a watcher over dir. onReload receives each catalog that
// parses successfully; broken edits are logged and skipped.
func NewWatcher(dir string, onReload func(*Catalog), opts ...WatchOption) *Watcher {
	w := &Watcher{
		dir:      dir,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
		onReload: onReload,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fieldset: watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("fieldset: watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching field sets", zap.String("dir", w.dir))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isConfigFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("field set changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("field set watcher error", zap.Error(err))
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	catalog, err := LoadFS(os.DirFS(w.dir))
	if err != nil {
		w.logger.Error("field set reload failed", zap.Error(err))
		return
	}
	w.logger.Info("field sets reloaded", zap.Strings("pages", catalog.Names()))
	if w.onReload != nil {
		w.onReload(catalog)
	}
}
