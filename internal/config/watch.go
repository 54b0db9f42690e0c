package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file when it changes on disk and hands each
// valid result to OnChange. Invalid edits are logged and skipped so a typo
// never takes down a running listener.
type Watcher struct {
	Path     string
	OnChange func(*Config)
	Log      *zap.Logger

	// Debounce collapses the burst of events editors emit on save.
	Debounce time.Duration
}

// NewWatcher creates a Watcher for path with a 200ms debounce.
func NewWatcher(path string, logger *zap.Logger, onChange func(*Config)) *Watcher {
	return &Watcher{
		Path:     path,
		OnChange: onChange,
		Log:      logger,
		Debounce: 200 * time.Millisecond,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file itself because many editors save by rename.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}
	w.Log.Debug("watching config", zap.String("path", w.Path))

	target := filepath.Clean(w.Path)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fire = time.After(w.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn("config watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.Path)
	if err != nil {
		w.Log.Warn("config reload rejected", zap.String("path", w.Path), zap.Error(err))
		return
	}
	w.Log.Info("config reloaded", zap.String("path", w.Path))
	if w.OnChange != nil {
		w.OnChange(cfg)
	}
}
