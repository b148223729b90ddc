package array

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NPY format constants.
//
// Format structure (NumPy .npy version 1.0):
//
//	[6 bytes: Magic "\x93NUMPY"]
//	[1 byte: major version] [1 byte: minor version]
//	[2 bytes: header length (uint16 LE); 4 bytes in version 2.0]
//	[Header: ASCII dict literal, space-padded, '\n' terminated]
//	[Data: raw little-endian element bytes, C order]
const (
	npyMagic     = "\x93NUMPY"
	npyAlignment = 64 // Header is padded so data starts on a 64-byte boundary
)

// NPY format errors.
var (
	ErrNPYMagic        = errors.New("invalid npy magic bytes")
	ErrNPYVersion      = errors.New("unsupported npy version")
	ErrNPYFortranOrder = errors.New("fortran-order npy data is not supported")
)

// ReadNPY reads a NumPy .npy serialized array. Versions 1.0 and 2.0 are
// supported; the data must be C-ordered and little-endian.
func ReadNPY(r io.Reader) (*Array, error) {
	magic := make([]byte, 6)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("failed to read npy magic: %w", err)
	}
	if string(magic) != npyMagic {
		return nil, ErrNPYMagic
	}

	version := make([]byte, 2)
	if _, err := io.ReadFull(r, version); err != nil {
		return nil, fmt.Errorf("failed to read npy version: %w", err)
	}

	var headerLen int
	switch version[0] {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	case 2:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("%w: %d.%d", ErrNPYVersion, version[0], version[1])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}

	dtype, shape, err := parseNPYHeader(string(header))
	if err != nil {
		return nil, err
	}

	size, err := byteSize(shape, dtype)
	if err != nil {
		return nil, err
	}
	// Declared sizes larger than the remaining input fail before the
	// allocation, not after, when the reader knows its length.
	if lr, ok := r.(interface{ Len() int }); ok && size > lr.Len() {
		return nil, fmt.Errorf("npy data needs %d bytes but only %d remain", size, lr.Len())
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read npy data: %w", err)
	}

	return NewFromBytes(shape, dtype, data)
}

// WriteNPY writes an array in NumPy .npy version 1.0 format.
func WriteNPY(w io.Writer, a *Array) error {
	dims := make([]string, len(a.shape))
	for i, d := range a.shape {
		dims[i] = strconv.Itoa(d)
	}
	var shapeStr string
	switch len(dims) {
	case 0:
		shapeStr = "()"
	case 1:
		shapeStr = "(" + dims[0] + ",)"
	default:
		shapeStr = "(" + strings.Join(dims, ", ") + ")"
	}

	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }",
		a.dtype.descr(), shapeStr)

	// Pad so the data section starts on an npyAlignment boundary.
	// Prefix is magic (6) + version (2) + header length (2).
	prefix := len(npyMagic) + 2 + 2
	total := prefix + len(header) + 1 // +1 for the trailing newline
	padding := (npyAlignment - total%npyAlignment) % npyAlignment
	header += strings.Repeat(" ", padding) + "\n"

	if _, err := io.WriteString(w, npyMagic); err != nil {
		return fmt.Errorf("failed to write npy magic: %w", err)
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return fmt.Errorf("failed to write npy version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return fmt.Errorf("failed to write npy header length: %w", err)
	}
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("failed to write npy header: %w", err)
	}
	if _, err := w.Write(a.data); err != nil {
		return fmt.Errorf("failed to write npy data: %w", err)
	}
	return nil
}

// parseNPYHeader extracts descr, fortran_order and shape from the header
// dict literal, e.g. {'descr': '<f8', 'fortran_order': False, 'shape': (2, 3), }.
func parseNPYHeader(header string) (DataType, Shape, error) {
	descr, err := npyHeaderValue(header, "descr")
	if err != nil {
		return 0, nil, err
	}
	descr = strings.Trim(descr, "'\"")
	dtype, err := parseDescr(descr)
	if err != nil {
		return 0, nil, err
	}

	order, err := npyHeaderValue(header, "fortran_order")
	if err != nil {
		return 0, nil, err
	}
	if order == "True" {
		return 0, nil, ErrNPYFortranOrder
	}

	shapeStr, err := npyHeaderValue(header, "shape")
	if err != nil {
		return 0, nil, err
	}
	shapeStr = strings.Trim(shapeStr, "()")
	shape := Shape{}
	for _, part := range strings.Split(shapeStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, err := strconv.Atoi(part)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid npy shape dimension %q: %w", part, err)
		}
		shape = append(shape, dim)
	}
	if err := shape.Validate(); err != nil {
		return 0, nil, fmt.Errorf("invalid npy shape: %w", err)
	}

	return dtype, shape, nil
}

// npyHeaderValue returns the raw value for a key in the header dict
// literal. Values never contain nested commas except the shape tuple,
// which is handled by matching its closing parenthesis.
func npyHeaderValue(header, key string) (string, error) {
	quoted := "'" + key + "'"
	idx := strings.Index(header, quoted)
	if idx < 0 {
		return "", fmt.Errorf("npy header missing key %q", key)
	}
	rest := header[idx+len(quoted):]
	colon := strings.Index(rest, ":")
	if colon < 0 {
		return "", fmt.Errorf("malformed npy header at key %q", key)
	}
	rest = strings.TrimSpace(rest[colon+1:])

	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return "", fmt.Errorf("unterminated tuple in npy header at key %q", key)
		}
		return rest[:end+1], nil
	}
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end]), nil
}
