package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"
)

// Writer produces a ZANJ archive container.
type Writer struct {
	file    *os.File
	zw      *zip.Writer
	written map[string]bool
	closed  bool
}

// NewWriter creates an archive container at path, truncating any
// existing file.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(file)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	return &Writer{
		file:    file,
		zw:      zw,
		written: make(map[string]bool),
	}, nil
}

// CreateMember starts a new archive member and returns a writer for its
// contents. The member is finalized when the next member is created or
// the Writer is closed.
func (w *Writer) CreateMember(name string) (io.Writer, error) {
	if w.closed {
		return nil, ErrWriterClosed
	}
	if w.written[name] {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateMember, name)
	}
	w.written[name] = true

	mw, err := w.zw.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create member %q: %w", name, err)
	}
	return mw, nil
}

// WriteMemberBytes writes a complete member from a byte slice.
func (w *Writer) WriteMemberBytes(name string, data []byte) error {
	mw, err := w.CreateMember(name)
	if err != nil {
		return err
	}
	if _, err := mw.Write(data); err != nil {
		return fmt.Errorf("failed to write member %q: %w", name, err)
	}
	return nil
}

// WriteDocument writes a JSON-encoded control document member.
func (w *Writer) WriteDocument(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal document %q: %w", name, err)
	}
	return w.WriteMemberBytes(name, data)
}

// Close finalizes the zip directory and closes the file. Safe to call
// multiple times.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.zw.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return w.file.Close()
}
