// Package saving serializes a nested value tree into a ZANJ archive,
// externalizing large payloads into their own members and leaving
// reference tokens in the main tree.
package saving

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/born-ml/zanj/internal/archive"
	"github.com/born-ml/zanj/internal/array"
	"github.com/born-ml/zanj/internal/dotpath"
	"github.com/born-ml/zanj/internal/sysinfo"
)

// DefaultExternalThreshold is the element count at and above which an
// array is stored as an external .npy member instead of inline.
const DefaultExternalThreshold = 256

// JSONLines marks a record sequence for externalization as a .jsonl
// member. Plain []any values stay inline in the main tree.
type JSONLines []any

// ArrayMode selects the inline encoding for arrays below the external
// threshold.
type ArrayMode int

const (
	// ArrayList encodes inline arrays as a flat list of numbers.
	ArrayList ArrayMode = iota
	// ArrayHex encodes inline arrays as a hex string of raw bytes.
	ArrayHex
)

type config struct {
	threshold int
	arrayMode ArrayMode
	checksums bool
}

// SaveOption configures Save.
type SaveOption func(*config)

// WithExternalThreshold overrides the element count at which arrays are
// externalized. Zero externalizes every array.
func WithExternalThreshold(n int) SaveOption {
	return func(c *config) { c.threshold = n }
}

// WithArrayMode selects the inline array encoding.
func WithArrayMode(m ArrayMode) SaveOption {
	return func(c *config) { c.arrayMode = m }
}

// WithoutChecksums skips recording per-member checksums in the metadata.
func WithoutChecksums() SaveOption {
	return func(c *config) { c.checksums = false }
}

type saver struct {
	cfg       config
	externals map[string]archive.ExternalItemInfo
	members   map[string][]byte
}

// Save writes tree to a ZANJ archive at path. Values of type
// *array.Array and JSONLines are externalized (arrays only when large
// enough); everything else must be JSON-encodable and is stored inline
// in the main tree document.
func Save(path string, tree any, opts ...SaveOption) error {
	cfg := config{
		threshold: DefaultExternalThreshold,
		arrayMode: ArrayList,
		checksums: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &saver{
		cfg:       cfg,
		externals: make(map[string]archive.ExternalItemInfo),
		members:   make(map[string][]byte),
	}

	main, err := s.walk(tree, nil)
	if err != nil {
		return err
	}

	meta := &archive.Metadata{
		FormatVersion: archive.FormatVersion,
		Created:       time.Now().UTC().Format(time.RFC3339),
		Sysinfo:       sysinfo.Snapshot(),
		ExternalsInfo: s.externals,
	}

	w, err := archive.NewWriter(path)
	if err != nil {
		return err
	}

	if err := s.writeAll(w, main, meta); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (s *saver) writeAll(w *archive.Writer, main any, meta *archive.Metadata) error {
	if err := w.WriteDocument(archive.MainDocument, main); err != nil {
		return err
	}
	if err := w.WriteDocument(archive.MetaDocument, meta); err != nil {
		return err
	}
	for name, data := range s.members {
		if err := w.WriteMemberBytes(name, data); err != nil {
			return err
		}
	}
	return nil
}

// walk recursively transforms the tree, replacing externalized values
// with reference tokens and small arrays with inline tagged encodings.
func (s *saver) walk(v any, path []any) (any, error) {
	switch val := v.(type) {
	case *array.Array:
		if val.NumElements() >= s.cfg.threshold {
			return s.externalize(path, archive.ExternalItemInfo{ItemType: archive.ItemNDArray}, archive.ExtNDArray, func(buf *bytes.Buffer) error {
				return array.WriteNPY(buf, val)
			})
		}
		return s.inlineArray(val)
	case JSONLines:
		return s.externalize(path, archive.ExternalItemInfo{ItemType: archive.ItemJSONL}, archive.ExtJSONL, func(buf *bytes.Buffer) error {
			for i, rec := range val {
				line, err := json.Marshal(rec)
				if err != nil {
					return fmt.Errorf("jsonl record %d: %w", i, err)
				}
				buf.Write(line)
				buf.WriteByte('\n')
			}
			return nil
		})
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			walked, err := s.walk(child, append(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = walked
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			walked, err := s.walk(child, append(path, i))
			if err != nil {
				return nil, err
			}
			out[i] = walked
		}
		return out, nil
	default:
		return v, nil
	}
}

// externalize serializes one payload into an archive member and returns
// the reference token that stands in for it in the main tree.
func (s *saver) externalize(path []any, info archive.ExternalItemInfo, ext string, encode func(*bytes.Buffer) error) (any, error) {
	key := dotpath.Join(path)
	if key == "" {
		return nil, fmt.Errorf("cannot externalize the tree root")
	}
	if _, exists := s.externals[key]; exists {
		return nil, fmt.Errorf("duplicate external key %q", key)
	}

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode external %q: %w", key, err)
	}
	data := buf.Bytes()

	info.Path = append([]any(nil), path...)
	if s.cfg.checksums {
		sum := blake3.Sum256(data)
		info.Checksum = hex.EncodeToString(sum[:])
	}

	s.externals[key] = info
	s.members[archive.MemberName(key, ext)] = data

	return map[string]any{archive.RefKey: key}, nil
}

// inlineArray produces the tagged mapping encoding for a small array.
func (s *saver) inlineArray(a *array.Array) (any, error) {
	m := map[string]any{
		"dtype": a.DType().String(),
		"shape": shapeToAny(a.Shape()),
	}
	switch s.cfg.arrayMode {
	case ArrayHex:
		m[archive.FormatKey] = archive.FormatArrayHex
		m["data"] = hex.EncodeToString(a.Data())
	default:
		m[archive.FormatKey] = archive.FormatArrayList
		m["data"] = a.Flat()
	}
	return m, nil
}

func shapeToAny(s array.Shape) []any {
	out := make([]any, len(s))
	for i, d := range s {
		out[i] = d
	}
	return out
}
