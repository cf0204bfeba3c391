package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/okra-platform/samplegen/internal/watch"
)

// Watch regenerates the selected codebases whenever the configuration file changes
func (c *Controller) Watch(ctx context.Context) error {
	s, err := c.loadSetup()
	if err != nil {
		return err
	}
	if s.configPath == "" {
		return fmt.Errorf("no configuration file to watch; run 'samplegen init' first")
	}

	if _, err := c.generate(ctx, s); err != nil {
		return err
	}

	watcher, err := watch.NewConfigWatcher(s.configPath, watch.DefaultDebounce, c.Logger, func(path string) {
		c.Logger.Info().Str("config", path).Msg("Configuration changed, regenerating")
		c.regenerate(ctx)
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	c.Logger.Info().Str("config", s.configPath).Msg("Watching for changes")
	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// regenerate reloads configuration and generates again. Failures are logged so
// a bad edit does not stop the watch loop.
func (c *Controller) regenerate(ctx context.Context) {
	s, err := c.loadSetup()
	if err != nil {
		c.Logger.Error().Err(err).Msg("Failed to reload configuration")
		return
	}

	results, err := c.generate(ctx, s)
	if err != nil {
		c.Logger.Error().Err(err).Msg("Regeneration failed")
		return
	}
	for _, res := range results {
		c.Logger.Info().Str("size", res.Label).Int("files", res.Files).Msg("Regenerated")
	}
}
