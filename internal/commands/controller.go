// Package commands contains the CLI commands for the application
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/okra-platform/samplegen/internal/catalog"
	"github.com/okra-platform/samplegen/internal/codegen"
	"github.com/okra-platform/samplegen/internal/config"
	"github.com/okra-platform/samplegen/internal/templates"
)

type Flags struct {
	LogLevel   string
	ConfigPath string
	Output     string
	Sizes      []string
	Workers    int
}

type Controller struct {
	Flags  *Flags
	Out    io.Writer
	Logger zerolog.Logger

	// FileSystem is used for generated output; nil means the local disk
	FileSystem codegen.FileSystem
}

// setup is everything a command needs to generate or inspect codebases
type setup struct {
	config     *config.Config
	configPath string
	catalog    catalog.Catalog
	templates  *templates.Set
	output     string
	workers    int
	sizes      []catalog.SizeSpec
}

func (c *Controller) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Controller) flags() *Flags {
	if c.Flags == nil {
		return &Flags{}
	}
	return c.Flags
}

// loadSetup resolves configuration, applies flag overrides and loads the
// blueprints. Nothing is written to disk.
func (c *Controller) loadSetup() (*setup, error) {
	flags := c.flags()

	var (
		cfg     *config.Config
		cfgPath string
		baseDir string
		err     error
	)
	if flags.ConfigPath != "" {
		cfg, err = config.LoadConfigFromPath(flags.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfgPath = flags.ConfigPath
		baseDir = filepath.Dir(flags.ConfigPath)
	} else {
		var root string
		cfg, root, err = config.LoadConfig()
		switch {
		case errors.Is(err, config.ErrNotFound):
			cfg = config.Default()
		case err != nil:
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		default:
			cfgPath = filepath.Join(root, config.FileName)
			baseDir = root
		}
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	set, err := templates.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	output := cfg.ResolveOutput(baseDir)
	if flags.Output != "" {
		output = flags.Output
	}

	workers := cfg.Workers
	if flags.Workers > 0 {
		workers = flags.Workers
	}

	sizes, err := cat.Select(flags.Sizes)
	if err != nil {
		return nil, err
	}

	return &setup{
		config:     cfg,
		configPath: cfgPath,
		catalog:    cat,
		templates:  set,
		output:     output,
		workers:    workers,
		sizes:      sizes,
	}, nil
}

func (s *setup) labels() []string {
	labels := make([]string, len(s.sizes))
	for i, size := range s.sizes {
		labels[i] = size.Label
	}
	return labels
}

func (c *Controller) newGenerator(s *setup) *codegen.Generator {
	return codegen.NewGenerator(s.catalog, s.templates, codegen.Options{
		Output:     s.output,
		Workers:    s.workers,
		Logger:     c.Logger,
		FileSystem: c.FileSystem,
	})
}
