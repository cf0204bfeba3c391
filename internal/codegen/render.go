package codegen

import (
	"fmt"
	"path"
	"strings"

	"github.com/okra-platform/samplegen/internal/catalog"
	"github.com/okra-platform/samplegen/internal/codegen/writer"
	"github.com/okra-platform/samplegen/internal/naming"
	"github.com/okra-platform/samplegen/internal/templates"
)

const (
	// ManifestName is the package manifest written into every directory
	ManifestName = "__init__.py"

	// Version is the literal written into every root manifest
	Version = "0.1.0"
)

// File is one generated file. Path is slash-separated and relative to the
// codebase root.
type File struct {
	Path    string
	Content []byte
}

// RenderModule expands fileCount sample files for module in generation order
// followed by the module manifest
func RenderModule(set *templates.Set, module string, fileCount int) ([]File, error) {
	files := make([]File, 0, fileCount+1)
	names := make([]string, 0, fileCount)

	for i := 0; i < fileCount; i++ {
		kind := templates.ForIndex(i)
		params := templates.NewParams(module, naming.ClassName(module, i))

		content, err := set.Expand(kind, params)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s file %d: %w", module, i, err)
		}

		name := kind.FileName(i)
		names = append(names, name)
		files = append(files, File{Path: path.Join(module, name), Content: content})
	}

	files = append(files, File{
		Path:    path.Join(module, ManifestName),
		Content: ModuleManifest(module, names),
	})
	return files, nil
}

// RenderCodebase expands every module of size and the root manifest
func RenderCodebase(cat catalog.Catalog, set *templates.Set, size catalog.SizeSpec) ([]File, error) {
	files := make([]File, 0, size.TotalFiles())
	for _, module := range cat.ModulesFor(size.Modules) {
		moduleFiles, err := RenderModule(set, module, size.FilesPerModule)
		if err != nil {
			return nil, err
		}
		files = append(files, moduleFiles...)
	}

	files = append(files, File{Path: ManifestName, Content: RootManifest(size.Label)})
	return files, nil
}

// ModuleManifest re-exports every listed file, in order, and declares an empty
// public name list
func ModuleManifest(module string, fileNames []string) []byte {
	w := writer.NewWriter()
	w.WriteDocstring(module + " module.")
	if len(fileNames) == 0 {
		w.Newline()
	}
	for _, name := range fileNames {
		w.WriteStarImport(strings.TrimSuffix(name, ".py"))
	}
	w.Newline()
	w.WriteLine("__all__: list[str] = []")
	return w.Bytes()
}

// RootManifest names the codebase size and pins its version
func RootManifest(label string) []byte {
	w := writer.NewWriter()
	w.WriteDocstring(naming.Capitalize(label) + " test codebase for PyRight benchmarks.")
	w.WriteLinef("__version__ = %q", Version)
	return w.Bytes()
}
