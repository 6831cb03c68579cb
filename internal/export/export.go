// Package export hands note content to the user outside the store.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"notes-go/internal/notes"
)

// FileExporter writes exported notes as files into a directory.
type FileExporter struct {
	dir string
}

// NewFileExporter creates an exporter writing into dir. The directory is
// created on first export.
func NewFileExporter(dir string) *FileExporter {
	return &FileExporter{dir: dir}
}

// Export writes content to <dir>/<filename>, replacing an earlier export of
// the same name, and returns the written path.
func (e *FileExporter) Export(ctx context.Context, filename, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("invalid export file name %q", filename)
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	dest := filepath.Join(e.dir, filename)
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return dest, nil
}

// WriterExporter writes exported content to a stream, such as stdout.
type WriterExporter struct {
	w io.Writer
}

func NewWriterExporter(w io.Writer) *WriterExporter {
	return &WriterExporter{w: w}
}

// Export copies content to the writer. The file name is only reported back.
func (e *WriterExporter) Export(ctx context.Context, filename, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(e.w, content); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}
	return filename, nil
}

var (
	_ notes.Exporter = (*FileExporter)(nil)
	_ notes.Exporter = (*WriterExporter)(nil)
)
