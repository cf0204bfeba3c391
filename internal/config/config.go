package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okra-platform/samplegen/internal/catalog"
)

// FileName is the name of the configuration file searched for
const FileName = "samplegen.json"

// ErrNotFound is returned when no configuration file exists
var ErrNotFound = errors.New("no " + FileName + " found")

// Config represents the samplegen.json configuration file
type Config struct {
	Output  string             `json:"output"`
	Workers int                `json:"workers"`
	Sizes   []catalog.SizeSpec `json:"sizes"`
	Modules []string           `json:"modules"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads samplegen.json from the current directory or a parent directory
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &config, nil
}

// Save writes the configuration as indented JSON
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	_, err := c.Catalog()
	return err
}

// Catalog builds the generation catalog described by the configuration
func (c *Config) Catalog() (catalog.Catalog, error) {
	return catalog.New(c.Sizes, c.Modules)
}

// ResolveOutput returns the output directory, interpreting a relative path
// against baseDir
func (c *Config) ResolveOutput(baseDir string) string {
	if filepath.IsAbs(c.Output) || baseDir == "" {
		return c.Output
	}
	return filepath.Join(baseDir, c.Output)
}

func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = "./sample-code"
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.Sizes == nil {
		c.Sizes = catalog.DefaultSizes()
	}
	if c.Modules == nil {
		c.Modules = catalog.DefaultModules()
	}
}

// loadConfigFromDir searches for samplegen.json in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			config, err := LoadConfigFromPath(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, startDir)
}
