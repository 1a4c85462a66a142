package platform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reports edits to a config file made while the server
// runs. Settings are only read at startup, so a change is surfaced to
// the operator and to OnChange but never applied.
type ConfigWatcher struct {
	*worker.BaseWorker
	path     string
	current  Config
	logger   *slog.Logger
	onChange func(Config)
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
}

// NewConfigWatcher watches path, comparing new contents with current.
// onChange may be nil.
func NewConfigWatcher(path string, current Config, logger *slog.Logger, onChange func(Config)) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		BaseWorker: worker.NewBaseWorker("config-watcher"),
		path:       filepath.Clean(path),
		current:    current,
		logger:     logger,
		onChange:   onChange,
	}
}

func (w *ConfigWatcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("config watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors replace files by rename, so the directory is watched.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.watcher = watcher

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *ConfigWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *ConfigWatcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              w.path,
		}
	})
}

func (w *ConfigWatcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			attrs := []any{"error", fmt.Errorf("config watcher panic: %v", recovered)}
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				attrs = append(attrs, "stack", string(debug.Stack()))
			}
			w.logger.Error("config watcher panic", attrs...)
		}
	}()
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}

func (w *ConfigWatcher) reload() {
	next, err := readConfig(w.path)
	if err != nil {
		w.logger.Warn("config file changed but cannot be loaded", "path", w.path, "error", err)
		return
	}
	if next == w.current {
		return
	}
	w.logger.Warn("config file changed, restart to apply", "path", w.path)
	w.current = next
	if w.onChange != nil {
		w.onChange(next)
	}
}
