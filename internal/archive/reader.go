package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// Reader provides read access to a ZANJ archive container. It holds the
// zip file open for its whole lifetime; Close releases it.
type Reader struct {
	path    string
	zr      *zip.ReadCloser
	members map[string]*zip.File
	closed  bool
}

// OpenReader opens an archive container for reading. It fails if the
// file is not a zip archive or if either control document is absent.
func OpenReader(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: fmt.Errorf("%w: %v", ErrNotArchive, err)}
	}

	// Swap in the klauspost deflate implementation for member reads.
	zr.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})

	r := &Reader{
		path:    path,
		zr:      zr,
		members: make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		r.members[f.Name] = f
	}

	for _, name := range []string{MainDocument, MetaDocument} {
		if _, ok := r.members[name]; !ok {
			_ = zr.Close()
			return nil, &FormatError{Path: path, Member: name, Err: ErrMissingControlDoc}
		}
	}

	return r, nil
}

// Path returns the archive's file path.
func (r *Reader) Path() string {
	return r.path
}

// HasMember reports whether a named member exists in the archive.
func (r *Reader) HasMember(name string) bool {
	_, ok := r.members[name]
	return ok
}

// MemberNames returns the names of all archive members.
func (r *Reader) MemberNames() []string {
	names := make([]string, 0, len(r.members))
	for _, f := range r.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// OpenMember opens a read stream for a named archive member. The caller
// must close the returned stream.
func (r *Reader) OpenMember(name string) (io.ReadCloser, error) {
	f, ok := r.members[name]
	if !ok {
		return nil, &FormatError{Path: r.path, Member: name, Err: ErrMemberMissing}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open member %q: %w", name, err)
	}
	return rc, nil
}

// ReadMemberBytes reads an entire member into memory. The member stream
// is released on all paths.
func (r *Reader) ReadMemberBytes(name string) ([]byte, error) {
	rc, err := r.OpenMember(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read member %q: %w", name, err)
	}
	return data, nil
}

// ReadMain parses and returns the main tree document.
func (r *Reader) ReadMain() (any, error) {
	var tree any
	if err := r.readJSON(MainDocument, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// ReadMetadata parses the metadata document into the external-item table.
func (r *Reader) ReadMetadata() (*Metadata, error) {
	meta := &Metadata{}
	if err := r.readJSON(MetaDocument, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (r *Reader) readJSON(name string, v any) error {
	rc, err := r.OpenMember(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := json.NewDecoder(rc).Decode(v); err != nil {
		return &FormatError{Path: r.path, Member: name, Err: fmt.Errorf("%w: %v", ErrMalformedDocument, err)}
	}
	return nil
}

// Close closes the reader and the underlying zip file. Safe to call
// multiple times.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.zr.Close()
}
