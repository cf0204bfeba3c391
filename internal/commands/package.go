package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/okra-platform/samplegen/internal/archive"
)

// Package writes a .tar.gz next to each selected codebase. Codebases are
// generated first when they do not exist yet.
func (c *Controller) Package(ctx context.Context) error {
	s, err := c.loadSetup()
	if err != nil {
		return err
	}

	gen := c.newGenerator(s)
	packager := archive.DefaultPackager()
	out := c.out()

	for _, size := range s.sizes {
		root := gen.RootFor(size.Label)
		exists, err := gen.Exists(size.Label)
		if err != nil {
			return err
		}
		if !exists {
			c.Logger.Info().Str("size", size.Label).Msg("Codebase missing, generating")
			if _, err := gen.WriteCodebase(ctx, size); err != nil {
				return fmt.Errorf("failed to generate %s codebase: %w", size.Label, err)
			}
		}

		dest := filepath.Join(gen.Output(), size.Label+".tar.gz")
		summary, err := packager.CreatePackage(ctx, root, dest)
		if err != nil {
			return fmt.Errorf("failed to package %s codebase: %w", size.Label, err)
		}

		fmt.Fprintf(out, "Packaged %s: %s (%d entries, %s)\n", size.Label, summary.Path, summary.Entries, humanize.Bytes(uint64(summary.Bytes)))
	}
	return nil
}
