// Package verify compares a generated codebase on disk with the tree the
// generator would produce for the same configuration.
package verify

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/okra-platform/samplegen/internal/codegen"
)

// Report lists the differences between expected and actual files.
// Paths are slash-separated and relative to the codebase root.
type Report struct {
	Root     string
	Checked  int
	Missing  []string
	Extra    []string
	Modified []string
}

// Clean reports whether the tree matched exactly
func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Modified) == 0
}

func (r Report) String() string {
	if r.Clean() {
		return fmt.Sprintf("%s: %d files match", r.Root, r.Checked)
	}
	return fmt.Sprintf("%s: %d missing, %d extra, %d modified", r.Root, len(r.Missing), len(r.Extra), len(r.Modified))
}

// Digest returns the content hash used for comparisons
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Tree walks root and compares every file with expected
func Tree(ctx context.Context, root string, expected []codegen.File) (Report, error) {
	report := Report{Root: root}

	want := make(map[string]uint64, len(expected))
	for _, f := range expected {
		want[f.Path] = Digest(f.Content)
	}

	found := make(map[string]bool, len(expected))
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		digest, ok := want[rel]
		if !ok {
			report.Extra = append(report.Extra, rel)
			return nil
		}
		found[rel] = true
		report.Checked++

		actual, err := digestFile(path)
		if err != nil {
			return err
		}
		if actual != digest {
			report.Modified = append(report.Modified, rel)
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	for path := range want {
		if !found[path] {
			report.Missing = append(report.Missing, path)
		}
	}

	sort.Strings(report.Missing)
	sort.Strings(report.Extra)
	sort.Strings(report.Modified)
	return report, nil
}

func digestFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
