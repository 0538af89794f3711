package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// TextWriter renders content into a writer, e.g. metrics.Metrics.WriteText.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// MetricsFile publishes a metrics snapshot to a single file, replacing it
// atomically so textfile collectors never read a partial write.
type MetricsFile struct {
	path string
}

// NewMetricsFile creates a writer for path.
func NewMetricsFile(path string) *MetricsFile {
	return &MetricsFile{path: path}
}

// Write renders src and swaps it into place via a temp file and rename.
func (f *MetricsFile) Write(src TextWriter) error {
	var buf bytes.Buffer
	if err := src.WriteText(&buf); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// Path returns the target file path.
func (f *MetricsFile) Path() string {
	return f.path
}
