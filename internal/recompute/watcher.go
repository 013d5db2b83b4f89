package recompute

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/bridge-scorer/internal/config"
	"github.com/ramonehamilton/bridge-scorer/internal/events"
)

// Watcher reloads the configuration file when it changes and reruns every
// session with the new settings.
type Watcher struct {
	path       string
	recomputer *Recomputer
	dispatcher *events.EventDispatcher
	debounce   time.Duration
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, r *Recomputer, d *events.EventDispatcher, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{path: path, recomputer: r, dispatcher: d, debounce: debounce}
}

// Run blocks until ctx is cancelled. The directory is watched rather than the
// file so that editors replacing the file atomically are seen.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	target := filepath.Clean(w.path)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watcher] File watcher error: %v", err)
		case <-timer.C:
			if err := w.reload(ctx); err != nil {
				log.Printf("[Watcher] Reload failed: %v", err)
			}
		}
	}
}

func (w *Watcher) reload(ctx context.Context) error {
	cfg, err := config.Load(w.path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	engineCfg, err := cfg.Engine()
	if err != nil {
		return err
	}

	w.recomputer.SetConfig(engineCfg)
	log.Printf("[Watcher] Configuration reloaded from %s", w.path)
	if w.dispatcher != nil {
		w.dispatcher.Dispatch(events.NewTypedEvent(events.TypeConfigReloaded, events.ConfigReloadedEvent{
			Path:   w.path,
			Method: engineCfg.Method.String(),
		}, ctx))
	}

	_, err = w.recomputer.RunAll(ctx, false)
	return err
}
