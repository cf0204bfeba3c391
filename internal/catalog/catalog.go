// Package catalog holds the fixed configuration tables that drive sample generation:
// the size catalog and the module name pool.
package catalog

import (
	"fmt"
)

// SizeSpec describes one codebase scale
type SizeSpec struct {
	Label          string `json:"label"`
	Modules        int    `json:"modules"`
	FilesPerModule int    `json:"files_per_module"`
}

// TotalFiles returns the number of files a codebase of this size contains when
// the module pool has at least Modules entries: one per generated file, one
// manifest per module and the root manifest.
func (s SizeSpec) TotalFiles() int {
	return s.Modules*(s.FilesPerModule+1) + 1
}

// Catalog is the read-only set of tables a generation run works from.
// Build one with New or Default and pass it by value.
type Catalog struct {
	sizes   []SizeSpec
	modules []string
}

// DefaultSizes returns the built-in size catalog in generation order
func DefaultSizes() []SizeSpec {
	return []SizeSpec{
		{Label: "small", Modules: 3, FilesPerModule: 5},
		{Label: "medium", Modules: 5, FilesPerModule: 15},
		{Label: "large", Modules: 10, FilesPerModule: 25},
	}
}

// DefaultModules returns the built-in module name pool
func DefaultModules() []string {
	return []string{
		"core",
		"models",
		"services",
		"utils",
		"handlers",
		"validators",
		"transformers",
		"repositories",
		"controllers",
		"middleware",
	}
}

// Default returns the catalog built from the built-in tables
func Default() Catalog {
	return Catalog{
		sizes:   DefaultSizes(),
		modules: DefaultModules(),
	}
}

// New creates a catalog from the given tables. The slices are copied.
func New(sizes []SizeSpec, modules []string) (Catalog, error) {
	seen := make(map[string]bool, len(sizes))
	for _, s := range sizes {
		if err := ValidateLabel(s.Label); err != nil {
			return Catalog{}, err
		}
		if seen[s.Label] {
			return Catalog{}, fmt.Errorf("duplicate size label: %s", s.Label)
		}
		seen[s.Label] = true
		if s.Modules < 0 {
			return Catalog{}, fmt.Errorf("size %s: module count cannot be negative", s.Label)
		}
		if s.FilesPerModule < 0 {
			return Catalog{}, fmt.Errorf("size %s: files per module cannot be negative", s.Label)
		}
	}

	names := make(map[string]bool, len(modules))
	for _, m := range modules {
		if !isIdentifier(m) || pythonKeywords[m] {
			return Catalog{}, fmt.Errorf("invalid module name: %q", m)
		}
		if names[m] {
			return Catalog{}, fmt.Errorf("duplicate module name: %s", m)
		}
		names[m] = true
	}

	return Catalog{
		sizes:   append([]SizeSpec(nil), sizes...),
		modules: append([]string(nil), modules...),
	}, nil
}

// Sizes returns a copy of the size catalog in order
func (c Catalog) Sizes() []SizeSpec {
	return append([]SizeSpec(nil), c.sizes...)
}

// Modules returns a copy of the module name pool
func (c Catalog) Modules() []string {
	return append([]string(nil), c.modules...)
}

// Size looks up a size by label
func (c Catalog) Size(label string) (SizeSpec, bool) {
	for _, s := range c.sizes {
		if s.Label == label {
			return s, true
		}
	}
	return SizeSpec{}, false
}

// Select returns the sizes whose labels are listed, in catalog order.
// An empty filter selects every size.
func (c Catalog) Select(labels []string) ([]SizeSpec, error) {
	if len(labels) == 0 {
		return c.Sizes(), nil
	}

	want := make(map[string]bool, len(labels))
	for _, l := range labels {
		if _, ok := c.Size(l); !ok {
			return nil, fmt.Errorf("unknown size: %s", l)
		}
		want[l] = true
	}

	var out []SizeSpec
	for _, s := range c.sizes {
		if want[s.Label] {
			out = append(out, s)
		}
	}
	return out, nil
}

// ModulesFor returns the first n names of the pool. When n exceeds the pool
// size only the available names are returned.
func (c Catalog) ModulesFor(n int) []string {
	if n < 0 {
		n = 0
	}
	if n > len(c.modules) {
		n = len(c.modules)
	}
	return append([]string(nil), c.modules[:n]...)
}

// pythonKeywords cannot name an importable package
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// ValidateLabel checks that label names a single directory under the output
// root. Only letters, digits, '_' and '-' are allowed, so path separators and
// the "." and ".." entries are rejected.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("size label cannot be empty")
	}
	for _, r := range label {
		switch {
		case r == '_', r == '-', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return fmt.Errorf("invalid size label: %q", label)
		}
	}
	return nil
}

// isIdentifier reports whether name is usable as a Python package directory
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
