package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/okra-platform/samplegen/internal/codegen"
)

const banner = "PyRight Multithreaded Benchmark - Sample Code Generator"

// Generate regenerates every selected codebase size
func (c *Controller) Generate(ctx context.Context) error {
	s, err := c.loadSetup()
	if err != nil {
		return err
	}

	out := c.out()
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, rule)

	results, err := c.generate(ctx, s)
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintf(out, "\n%s codebase (%d modules): %s\n", res.Label, len(res.Modules), res.Root)
		fmt.Fprintf(out, "  Total: %d files, %s\n", res.Files, humanize.Bytes(uint64(res.Bytes)))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "Generation complete!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. cd pyright")
	fmt.Fprintln(out, "  2. pyright                  # Single-threaded baseline")
	fmt.Fprintln(out, "  3. pyright --threads        # Multi-threaded comparison")
	return nil
}

func (c *Controller) generate(ctx context.Context, s *setup) ([]codegen.Result, error) {
	gen := c.newGenerator(s)
	results, err := gen.GenerateAll(ctx, s.labels())
	if err != nil {
		return nil, err
	}
	return results, nil
}
