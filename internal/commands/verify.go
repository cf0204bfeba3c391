package commands

import (
	"context"
	"fmt"

	"github.com/okra-platform/samplegen/internal/codegen"
	"github.com/okra-platform/samplegen/internal/verify"
)

// Verify checks that generated codebases on disk match a fresh generation
func (c *Controller) Verify(ctx context.Context) error {
	s, err := c.loadSetup()
	if err != nil {
		return err
	}

	gen := c.newGenerator(s)
	out := c.out()

	var drifted []string
	for _, size := range s.sizes {
		expected, err := codegen.RenderCodebase(s.catalog, s.templates, size)
		if err != nil {
			return fmt.Errorf("failed to render %s codebase: %w", size.Label, err)
		}

		report, err := verify.Tree(ctx, gen.RootFor(size.Label), expected)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, report.String())
		for _, p := range report.Missing {
			fmt.Fprintf(out, "  missing:  %s\n", p)
		}
		for _, p := range report.Extra {
			fmt.Fprintf(out, "  extra:    %s\n", p)
		}
		for _, p := range report.Modified {
			fmt.Fprintf(out, "  modified: %s\n", p)
		}

		if !report.Clean() {
			drifted = append(drifted, size.Label)
		}
	}

	if len(drifted) > 0 {
		return fmt.Errorf("generated code is out of date for %v; run samplegen generate", drifted)
	}
	return nil
}
