package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// epoch is stamped on every entry so identical trees produce identical archives
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Summary describes a written archive
type Summary struct {
	Path    string
	Entries int
	Bytes   int64
}

// Packager creates .tar.gz files from generated codebases
type Packager struct {
	level int
}

// NewPackager creates a packager using the given gzip compression level
func NewPackager(level int) *Packager {
	return &Packager{level: level}
}

// DefaultPackager uses the default compression level
func DefaultPackager() *Packager {
	return NewPackager(gzip.DefaultCompression)
}

// CreatePackage archives srcDir into outputPath. Entries are stored under the
// base name of srcDir in lexical order.
func (p *Packager) CreatePackage(ctx context.Context, srcDir, outputPath string) (Summary, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return Summary{}, fmt.Errorf("%s is not a directory", srcDir)
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create package file: %w", err)
	}

	summary, err := p.writePackage(ctx, file, srcDir, outputPath)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close package file: %w", closeErr)
	}
	if err != nil {
		// A truncated archive must not be mistaken for a finished one
		os.Remove(outputPath)
		return Summary{}, err
	}
	return summary, nil
}

func (p *Packager) writePackage(ctx context.Context, file *os.File, srcDir, outputPath string) (Summary, error) {
	gzipWriter, err := gzip.NewWriterLevel(file, p.level)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tarWriter := tar.NewWriter(gzipWriter)

	summary := Summary{Path: outputPath}
	prefix := filepath.Base(srcDir)
	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(prefix, rel))

		if d.IsDir() {
			summary.Entries++
			return p.addDirToTar(tarWriter, name)
		}
		summary.Entries++
		return p.addFileToTar(tarWriter, path, name)
	})
	if err != nil {
		return Summary{}, fmt.Errorf("failed to add files to package: %w", err)
	}

	if err := tarWriter.Close(); err != nil {
		return Summary{}, fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return Summary{}, fmt.Errorf("failed to finish gzip stream: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		return Summary{}, err
	}
	summary.Bytes = stat.Size()
	return summary, nil
}

func (p *Packager) addDirToTar(tw *tar.Writer, name string) error {
	return tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name + "/",
		Mode:     0755,
		ModTime:  epoch,
	})
}

// addFileToTar adds a file to the tar archive
func (p *Packager) addFileToTar(tw *tar.Writer, sourcePath, destName string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     destName,
		Size:     info.Size(),
		Mode:     0644,
		ModTime:  epoch,
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tw, file)
	return err
}
