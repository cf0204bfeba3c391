package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 200 * time.Millisecond

// ConfigWatcher calls onChange after the watched file is written, created or
// replaced. Bursts of events within the debounce window produce one call.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string)
	logger   zerolog.Logger
}

// NewConfigWatcher creates a watcher for the file at path. The parent directory
// is watched so editors that replace the file are still observed.
func NewConfigWatcher(path string, debounce time.Duration, logger zerolog.Logger, onChange func(path string)) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}

	return &ConfigWatcher{
		watcher:  watcher,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Start delivers change notifications until ctx is done
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	timer := time.NewTimer(cw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if cw.shouldTrigger(event) {
				cw.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Config changed")
				timer.Reset(cw.debounce)
			}

		case <-timer.C:
			cw.onChange(cw.path)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if err != nil {
				// Log error but continue watching
				cw.logger.Warn().Err(err).Msg("Watcher error")
			}
		}
	}
}

// shouldTrigger reports whether event touches the watched file's content
func (cw *ConfigWatcher) shouldTrigger(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != cw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Close stops the watcher
func (cw *ConfigWatcher) Close() error {
	return cw.watcher.Close()
}
