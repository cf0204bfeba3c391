// Package codegen writes synthetic Python codebases to disk.
//
// A Generator expands the template set for every module of a size, writes one
// package manifest per module and a root manifest per codebase. Output
// directories of different modules and sizes are disjoint, so modules may be
// written concurrently without changing the result.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/okra-platform/samplegen/internal/catalog"
	"github.com/okra-platform/samplegen/internal/templates"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Options configures a Generator
type Options struct {
	// Output is the directory that receives one subdirectory per size
	Output string

	// Workers bounds how many modules of one size are written at once
	Workers int

	Logger     zerolog.Logger
	FileSystem FileSystem
}

// Generator writes sample codebases for the sizes of a catalog
type Generator struct {
	catalog   catalog.Catalog
	templates *templates.Set
	fs        FileSystem
	output    string
	workers   int
	logger    zerolog.Logger
}

// Result summarizes one generated codebase
type Result struct {
	Label   string
	Root    string
	Modules []string
	Files   int
	Bytes   int64
}

type moduleResult struct {
	files []string
	bytes int64
}

// NewGenerator creates a generator for the given catalog and templates
func NewGenerator(cat catalog.Catalog, set *templates.Set, opts Options) *Generator {
	if opts.FileSystem == nil {
		opts.FileSystem = OSFileSystem{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Output == "" {
		opts.Output = "sample-code"
	}

	return &Generator{
		catalog:   cat,
		templates: set,
		fs:        opts.FileSystem,
		output:    opts.Output,
		workers:   opts.Workers,
		logger:    opts.Logger,
	}
}

// Output returns the directory codebases are written under
func (g *Generator) Output() string {
	return g.output
}

// RootFor returns the output directory of the size with the given label
func (g *Generator) RootFor(label string) string {
	return filepath.Join(g.output, label)
}

// Exists reports whether the codebase for label has been written
func (g *Generator) Exists(label string) (bool, error) {
	info, err := g.fs.Stat(g.RootFor(label))
	switch {
	case err == nil:
		return info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", g.RootFor(label), err)
	}
}

// GenerateAll writes every selected size in catalog order. An empty selection
// means every size. The first failure stops the run.
func (g *Generator) GenerateAll(ctx context.Context, labels []string) ([]Result, error) {
	sizes, err := g.catalog.Select(labels)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sizes))
	for _, size := range sizes {
		res, err := g.WriteCodebase(ctx, size)
		if err != nil {
			return results, fmt.Errorf("failed to generate %s codebase: %w", size.Label, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// WriteCodebase deletes any previous output for size, then writes all of its
// modules followed by the root manifest
func (g *Generator) WriteCodebase(ctx context.Context, size catalog.SizeSpec) (Result, error) {
	// The root is deleted below, so it must stay inside the output directory
	if err := catalog.ValidateLabel(size.Label); err != nil {
		return Result{}, err
	}
	root := g.RootFor(size.Label)

	if _, err := g.fs.Stat(root); err == nil {
		g.logger.Debug().Str("root", root).Msg("Removing previous output")
		if err := g.fs.RemoveAll(root); err != nil {
			return Result{}, fmt.Errorf("failed to remove %s: %w", root, err)
		}
	}
	if err := g.fs.MkdirAll(root, dirPerm); err != nil {
		return Result{}, fmt.Errorf("failed to create %s: %w", root, err)
	}

	modules := g.catalog.ModulesFor(size.Modules)
	g.logger.Info().
		Str("size", size.Label).
		Int("modules", len(modules)).
		Int("files_per_module", size.FilesPerModule).
		Msg("Generating codebase")

	results := make([]moduleResult, len(modules))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, module := range modules {
		i, module := i, module
		eg.Go(func() error {
			files, n, err := g.writeModule(egCtx, root, module, size.FilesPerModule)
			if err != nil {
				return err
			}
			results[i] = moduleResult{files: files, bytes: n}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{
		Label:   size.Label,
		Root:    root,
		Modules: modules,
	}
	for _, mr := range results {
		// Generated files plus the module manifest
		res.Files += len(mr.files) + 1
		res.Bytes += mr.bytes
	}

	manifest := RootManifest(size.Label)
	if err := g.writeFile(filepath.Join(root, ManifestName), manifest); err != nil {
		return Result{}, err
	}
	res.Files++
	res.Bytes += int64(len(manifest))

	g.logger.Info().Str("size", size.Label).Int("files", res.Files).Msg("Codebase complete")
	return res, nil
}

// WriteModule writes fileCount sample files and the manifest for module under
// baseDir and returns the sample file names in generation order
func (g *Generator) WriteModule(ctx context.Context, baseDir, module string, fileCount int) ([]string, error) {
	files, _, err := g.writeModule(ctx, baseDir, module, fileCount)
	return files, err
}

func (g *Generator) writeModule(ctx context.Context, baseDir, module string, fileCount int) ([]string, int64, error) {
	dir := filepath.Join(baseDir, module)
	if err := g.fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, 0, fmt.Errorf("failed to create module directory %s: %w", dir, err)
	}

	rendered, err := RenderModule(g.templates, module, fileCount)
	if err != nil {
		return nil, 0, err
	}

	names := make([]string, 0, fileCount)
	var written int64
	for _, f := range rendered {
		if err := ctx.Err(); err != nil {
			return nil, written, err
		}

		if err := g.writeFile(filepath.Join(baseDir, filepath.FromSlash(f.Path)), f.Content); err != nil {
			return nil, written, err
		}
		written += int64(len(f.Content))

		if base := filepath.Base(f.Path); base != ManifestName {
			names = append(names, base)
		}
	}

	return names, written, nil
}

func (g *Generator) writeFile(path string, data []byte) error {
	if err := g.fs.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	rel, err := filepath.Rel(g.output, path)
	if err != nil {
		rel = path
	}
	g.logger.Info().Str("path", rel).Msg("Created")
	return nil
}
