package loading

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/born-ml/zanj/internal/archive"
)

// externalStore resolves external keys to decoded payloads. Two
// implementations exist: lazyStore re-reads the backing member on every
// access, fullStore decodes everything at construction.
type externalStore interface {
	Get(key string) (any, error)
}

// lazyStore decodes external items on demand. Construction eagerly
// validates that every declared item's backing member exists, even
// though payload decoding is deferred; Get performs no memoization, so
// each access re-reads and re-decodes the member.
type lazyStore struct {
	reader *archive.Reader
	items  map[string]archive.ExternalItemInfo
	types  map[string]ItemType
	verify bool
}

func newLazyStore(r *archive.Reader, meta *archive.Metadata, types map[string]ItemType, verify bool) (*lazyStore, error) {
	s := &lazyStore{
		reader: r,
		items:  meta.ExternalsInfo,
		types:  types,
		verify: verify,
	}

	// Existence is checked up front for every declared key whose item
	// type is known; the member name of an unknown item type cannot be
	// derived, so those keys fail at first access instead.
	var missing []string
	for key, info := range s.items {
		it, ok := types[info.ItemType]
		if !ok {
			continue
		}
		if !r.HasMember(archive.MemberName(key, it.Ext)) {
			missing = append(missing, archive.MemberName(key, it.Ext))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrMissingExternal, strings.Join(missing, ", "))
	}

	return s, nil
}

// Get looks up the item type for key, reads the backing member and
// applies the type's decode function.
func (s *lazyStore) Get(key string) (any, error) {
	info, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q is not declared in externals_info", ErrMissingExternal, key)
	}
	return loadExternal(s.reader, key, info, s.types, s.verify)
}

// fullStore holds every external item decoded eagerly at construction.
type fullStore struct {
	items map[string]any
}

func newFullStore(r *archive.Reader, meta *archive.Metadata, types map[string]ItemType, verify bool) (*fullStore, error) {
	s := &fullStore{items: make(map[string]any, len(meta.ExternalsInfo))}
	for key, info := range meta.ExternalsInfo {
		val, err := loadExternal(r, key, info, types, verify)
		if err != nil {
			return nil, err
		}
		s.items[key] = val
	}
	return s, nil
}

// Get is a pure lookup; the archive is not touched.
func (s *fullStore) Get(key string) (any, error) {
	val, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q is not declared in externals_info", ErrMissingExternal, key)
	}
	return val, nil
}

// loadExternal is the shared decode path: resolve the item type, read
// the member bytes, verify the recorded checksum when present, decode.
func loadExternal(r *archive.Reader, key string, info archive.ExternalItemInfo, types map[string]ItemType, verify bool) (any, error) {
	it, ok := types[info.ItemType]
	if !ok {
		return nil, fmt.Errorf("%w: %q (external key %q)", ErrUnknownItemType, info.ItemType, key)
	}

	name := archive.MemberName(key, it.Ext)
	data, err := r.ReadMemberBytes(name)
	if err != nil {
		return nil, err
	}

	if verify && info.Checksum != "" {
		sum := blake3.Sum256(data)
		if got := hex.EncodeToString(sum[:]); got != info.Checksum {
			return nil, fmt.Errorf("%w: member %q: got %s, want %s", ErrChecksumMismatch, name, got, info.Checksum)
		}
	}

	val, err := it.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s member %q: %w", info.ItemType, name, err)
	}
	return val, nil
}
