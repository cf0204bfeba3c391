package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/okra-platform/samplegen/internal/catalog"
	"github.com/okra-platform/samplegen/internal/config"
)

type InitOptions struct {
	Output  string
	Workers int
	Sizes   []string
}

type FileSystem interface {
	Stat(name string) (os.FileInfo, error)
	Getwd() (string, error)
}

type osFileSystem struct{}

func (fs *osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *osFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

type InitCommand struct {
	filesystem FileSystem
	configPath string
	save       func(cfg *config.Config, path string) error
	// For testing: if set, skip prompting
	testOptions *InitOptions
}

func NewInitCommand(configPath string) *InitCommand {
	return &InitCommand{
		filesystem: &osFileSystem{},
		configPath: configPath,
		save: func(cfg *config.Config, path string) error {
			return cfg.Save(path)
		},
	}
}

// Init interactively writes a samplegen.json
func (c *Controller) Init(ctx context.Context) error {
	cmd := NewInitCommand(c.flags().ConfigPath)
	return cmd.Run(ctx, c)
}

func (ic *InitCommand) Run(ctx context.Context, c *Controller) error {
	return ic.RunWithOptions(ctx, c)
}

func (ic *InitCommand) RunWithOptions(ctx context.Context, c *Controller, opts ...tea.ProgramOption) error {
	path, err := ic.targetPath()
	if err != nil {
		return err
	}
	if _, err := ic.filesystem.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	var options *InitOptions

	// For testing: use provided options instead of prompting
	if ic.testOptions != nil {
		options = ic.testOptions
	} else {
		options, err = ic.promptInitOptions(opts...)
		if err != nil {
			return fmt.Errorf("failed to get init options: %w", err)
		}
	}

	cfg, err := buildConfig(options)
	if err != nil {
		return err
	}
	if err := ic.save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(c.out(), "Created %s\n", path)
	return nil
}

func (ic *InitCommand) targetPath() (string, error) {
	if ic.configPath != "" {
		return ic.configPath, nil
	}
	dir, err := ic.filesystem.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return filepath.Join(dir, config.FileName), nil
}

func (ic *InitCommand) promptInitOptions(opts ...tea.ProgramOption) (*InitOptions, error) {
	output := "./sample-code"
	workers := "1"
	var sizes []string

	form := ic.createInitForm(&output, &workers, &sizes)

	if len(opts) > 0 {
		// For testing: run with provided options
		program := tea.NewProgram(form, opts...)
		if _, err := program.Run(); err != nil {
			return nil, err
		}
	} else {
		// Normal execution
		if err := form.Run(); err != nil {
			return nil, err
		}
	}

	n, err := strconv.Atoi(workers)
	if err != nil {
		return nil, fmt.Errorf("invalid worker count: %w", err)
	}

	return &InitOptions{
		Output:  output,
		Workers: n,
		Sizes:   sizes,
	}, nil
}

func (ic *InitCommand) createInitForm(output, workers *string, sizes *[]string) *huh.Form {
	var options []huh.Option[string]
	for _, s := range catalog.DefaultSizes() {
		label := fmt.Sprintf("%s (%d modules x %d files)", s.Label, s.Modules, s.FilesPerModule)
		options = append(options, huh.NewOption(label, s.Label).Selected(true))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Where generated codebases are written").
				Value(output).
				Validate(validateOutput),

			huh.NewInput().
				Title("Workers").
				Description("Modules written in parallel").
				Value(workers).
				Validate(validateWorkers),

			huh.NewMultiSelect[string]().
				Title("Sizes").
				Description("Codebase sizes to generate").
				Options(options...).
				Value(sizes),
		),
	)
}

func validateOutput(s string) error {
	if s == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	return nil
}

func validateWorkers(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("workers must be a positive number")
	}
	return nil
}

// buildConfig keeps the selected default sizes in catalog order. An empty
// selection keeps every size.
func buildConfig(opts *InitOptions) (*config.Config, error) {
	if err := validateOutput(opts.Output); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		return nil, fmt.Errorf("workers must be a positive number")
	}

	sizes, err := catalog.Default().Select(opts.Sizes)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.Output = opts.Output
	cfg.Workers = opts.Workers
	cfg.Sizes = sizes
	return cfg, nil
}
