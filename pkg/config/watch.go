package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pion/logging"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// WatchConfig configures Watch.
type WatchConfig struct {
	// Path is the configuration file. Required.
	Path string

	// OnChange receives each successfully reloaded configuration. Required.
	OnChange func(Config)

	// Debounce delays reloads. Default: DefaultDebounce
	Debounce time.Duration

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Watch reloads the configuration whenever its file changes, until ctx is
// done. Invalid files are logged and skipped. The parent directory is
// watched so editors that replace the file are handled.
func Watch(ctx context.Context, config WatchConfig) error {
	if config.Path == "" || config.OnChange == nil {
		return fmt.Errorf("%w: watch needs a path and a callback", ErrInvalid)
	}
	debounce := config.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var log logging.LeveledLogger
	if config.LoggerFactory != nil {
		log = config.LoggerFactory.NewLogger("config")
	}

	path, err := filepath.Abs(config.Path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	reload := func() {
		c, err := LoadConfigFromPath(path)
		if err != nil {
			if log != nil {
				log.Warnf("ignoring config change: %v", err)
			}
			return
		}
		if log != nil {
			log.Infof("reloaded %s", path)
		}
		config.OnChange(c)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, reload)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if log != nil {
					log.Warnf("file watcher error: %v", err)
				}
			}
		}
	}()

	return nil
}
