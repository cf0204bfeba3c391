package codegen

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okra-platform/samplegen/internal/catalog"
	"github.com/okra-platform/samplegen/internal/templates"
)

// Test plan:
// 1. The small codebase matches the reference tree byte-for-byte
// 2. File counts follow modules x (files + 1) + 1 for every default size
// 3. Reruns delete stale output and reproduce identical content
// 4. Module counts above the pool size are truncated
// 5. Parallel generation produces the same tree as sequential generation
// 6. Filesystem failures propagate and stop later sizes
// 7. Cancellation stops generation
// 8. Labels that escape the output directory are refused before anything is deleted
// 9. Exists reports written codebases through the filesystem seam

func newTestGenerator(t *testing.T, cat catalog.Catalog, output string, workers int) *Generator {
	t.Helper()
	set, err := templates.Default()
	require.NoError(t, err)
	return NewGenerator(cat, set, Options{
		Output:  output,
		Workers: workers,
		Logger:  zerolog.Nop(),
	})
}

// readTree returns every file under root keyed by slash-separated relative path
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestGenerateAll_SmallMatchesReference(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	results, err := gen.GenerateAll(context.Background(), []string{"small"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "small", res.Label)
	assert.Equal(t, []string{"core", "models", "services"}, res.Modules)
	assert.Equal(t, 19, res.Files)

	expected := readTree(t, filepath.Join("testdata", "small"))
	got := readTree(t, filepath.Join(out, "small"))

	require.Len(t, got, 19)
	assert.Equal(t, expected, got)

	var total int64
	for _, content := range got {
		total += int64(len(content))
	}
	assert.Equal(t, total, res.Bytes)
}

func TestGenerateAll_FileCounts(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	results, err := gen.GenerateAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, size := range catalog.DefaultSizes() {
		t.Run(size.Label, func(t *testing.T) {
			assert.Equal(t, size.Label, results[i].Label)
			assert.Equal(t, size.TotalFiles(), results[i].Files)
			assert.Len(t, readTree(t, filepath.Join(out, size.Label)), size.TotalFiles())
		})
	}
}

func TestWriteModule_RoundRobinOrder(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	names, err := gen.WriteModule(context.Background(), out, "services", 15)
	require.NoError(t, err)

	expected := []string{
		"dataclass_00.py", "protocol_01.py", "service_02.py", "typeddict_03.py", "utils_04.py",
		"dataclass_05.py", "protocol_06.py", "service_07.py", "typeddict_08.py", "utils_09.py",
		"dataclass_10.py", "protocol_11.py", "service_12.py", "typeddict_13.py", "utils_14.py",
	}
	assert.Equal(t, expected, names)

	manifest, err := os.ReadFile(filepath.Join(out, "services", ManifestName))
	require.NoError(t, err)
	assert.Equal(t, string(ModuleManifest("services", expected)), string(manifest))
}

func TestWriteModule_ExistingDirectory(t *testing.T) {
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "core"), 0755))

	gen := newTestGenerator(t, catalog.Default(), out, 1)
	names, err := gen.WriteModule(context.Background(), out, "core", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"dataclass_00.py", "protocol_01.py"}, names)
}

func TestWriteModule_WideIndicesStayUnique(t *testing.T) {
	// Two-digit padding is a minimum width; index 100 and above keep all digits
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	names, err := gen.WriteModule(context.Background(), out, "core", 505)
	require.NoError(t, err)
	require.Len(t, names, 505)
	assert.Equal(t, "dataclass_100.py", names[100])
	assert.Equal(t, "utils_504.py", names[504])

	files := readTree(t, filepath.Join(out, "core"))
	assert.Len(t, files, 506)
}

func TestGenerateAll_RerunIsIdempotent(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	_, err := gen.GenerateAll(context.Background(), []string{"medium"})
	require.NoError(t, err)
	first := readTree(t, filepath.Join(out, "medium"))

	// Stale files from an earlier run must disappear
	stale := filepath.Join(out, "medium", "core", "stale.py")
	require.NoError(t, os.WriteFile(stale, []byte("x = 1\n"), 0644))

	_, err = gen.GenerateAll(context.Background(), []string{"medium"})
	require.NoError(t, err)
	second := readTree(t, filepath.Join(out, "medium"))

	assert.Equal(t, first, second)
	assert.NoFileExists(t, stale)
}

func TestWriteCodebase_ModulePoolExhausted(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	res, err := gen.WriteCodebase(context.Background(), catalog.SizeSpec{Label: "huge", Modules: 25, FilesPerModule: 1})
	require.NoError(t, err)

	assert.Len(t, res.Modules, 10)
	assert.Equal(t, 10*2+1, res.Files)

	entries, err := os.ReadDir(filepath.Join(out, "huge"))
	require.NoError(t, err)
	var dirs int
	for _, e := range entries {
		if e.IsDir() {
			dirs++
		}
	}
	assert.Equal(t, 10, dirs)
}

func TestWriteCodebase_EmptyModules(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	res, err := gen.WriteCodebase(context.Background(), catalog.SizeSpec{Label: "empty", Modules: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Files)

	manifest, err := os.ReadFile(filepath.Join(out, "empty", "core", ManifestName))
	require.NoError(t, err)
	assert.Equal(t, "\"\"\"core module.\"\"\"\n\n\n__all__: list[str] = []\n", string(manifest))
}

func TestGenerateAll_ParallelMatchesSequential(t *testing.T) {
	seqOut := t.TempDir()
	parOut := t.TempDir()

	_, err := newTestGenerator(t, catalog.Default(), seqOut, 1).GenerateAll(context.Background(), []string{"large"})
	require.NoError(t, err)
	results, err := newTestGenerator(t, catalog.Default(), parOut, 4).GenerateAll(context.Background(), []string{"large"})
	require.NoError(t, err)

	assert.Equal(t, readTree(t, filepath.Join(seqOut, "large")), readTree(t, filepath.Join(parOut, "large")))
	assert.Equal(t, catalog.DefaultModules(), results[0].Modules)
}

func TestGenerateAll_UnknownSize(t *testing.T) {
	gen := newTestGenerator(t, catalog.Default(), t.TempDir(), 1)

	_, err := gen.GenerateAll(context.Background(), []string{"tiny"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown size: tiny")
}

// failingFileSystem fails writes whose path contains failOn
type failingFileSystem struct {
	OSFileSystem
	mu      sync.Mutex
	failOn  string
	written []string
}

func (f *failingFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if filepath.Base(filepath.Dir(name)) == f.failOn {
		return errors.New("disk full")
	}
	f.mu.Lock()
	f.written = append(f.written, name)
	f.mu.Unlock()
	return f.OSFileSystem.WriteFile(name, data, perm)
}

func TestGenerateAll_FailFast(t *testing.T) {
	out := t.TempDir()
	set, err := templates.Default()
	require.NoError(t, err)

	failing := &failingFileSystem{failOn: "models"}
	gen := NewGenerator(catalog.Default(), set, Options{
		Output:     out,
		Logger:     zerolog.Nop(),
		FileSystem: failing,
	})

	results, err := gen.GenerateAll(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate small codebase")
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, results)

	// core finished before models failed; later sizes never started
	assert.DirExists(t, filepath.Join(out, "small", "core"))
	assert.NoDirExists(t, filepath.Join(out, "medium"))
	assert.NoFileExists(t, filepath.Join(out, "small", ManifestName))
}

func TestGenerateAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := newTestGenerator(t, catalog.Default(), t.TempDir(), 1)
	_, err := gen.GenerateAll(ctx, []string{"small"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGenerator_Defaults(t *testing.T) {
	set, err := templates.Default()
	require.NoError(t, err)

	gen := NewGenerator(catalog.Default(), set, Options{})
	assert.Equal(t, "sample-code", gen.Output())
	assert.Equal(t, filepath.Join("sample-code", "small"), gen.RootFor("small"))
	assert.Equal(t, 1, gen.workers)
}

func TestWriteCodebase_RejectsEscapingLabel(t *testing.T) {
	// Test: a label such as ".." never reaches RemoveAll
	parent := t.TempDir()
	sentinel := filepath.Join(parent, "main.py")
	require.NoError(t, os.WriteFile(sentinel, []byte("print('keep')\n"), 0644))
	out := filepath.Join(parent, "sample-code")
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	for _, label := range []string{"..", ".", "../sample-code", "a/b"} {
		_, err := gen.WriteCodebase(context.Background(), catalog.SizeSpec{Label: label, Modules: 1, FilesPerModule: 1})
		require.Error(t, err, label)
		assert.Contains(t, err.Error(), "invalid size label")
	}

	assert.FileExists(t, sentinel)
	assert.NoDirExists(t, out)
}

// statFailingFileSystem fails every Stat call
type statFailingFileSystem struct {
	OSFileSystem
}

func (statFailingFileSystem) Stat(name string) (os.FileInfo, error) {
	return nil, errors.New("permission denied")
}

func TestGenerator_Exists(t *testing.T) {
	out := t.TempDir()
	gen := newTestGenerator(t, catalog.Default(), out, 1)

	exists, err := gen.Exists("small")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = gen.GenerateAll(context.Background(), []string{"small"})
	require.NoError(t, err)

	exists, err = gen.Exists("small")
	require.NoError(t, err)
	assert.True(t, exists)

	// A plain file in place of the root is not a codebase
	require.NoError(t, os.WriteFile(filepath.Join(out, "medium"), nil, 0644))
	exists, err = gen.Exists("medium")
	require.NoError(t, err)
	assert.False(t, exists)

	set, err := templates.Default()
	require.NoError(t, err)
	failing := NewGenerator(catalog.Default(), set, Options{Output: out, FileSystem: statFailingFileSystem{}})
	_, err = failing.Exists("small")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
