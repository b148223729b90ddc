package loading

import (
	"fmt"
	"iter"

	"github.com/born-ml/zanj/internal/archive"
)

// Mode selects how external items are resolved.
type Mode int

const (
	// Lazy decodes an external item on every access, without caching.
	Lazy Mode = iota
	// Full decodes all external items eagerly at open time.
	Full
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Lazy:
		return "lazy"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "lazy":
		return Lazy, nil
	case "full":
		return Full, nil
	default:
		return 0, fmt.Errorf("unknown externals mode %q (want lazy or full)", s)
	}
}

type config struct {
	mode     Mode
	verify   bool
	handlers *Registry
	types    map[string]ItemType
}

// Option configures Open.
type Option func(*config)

// WithMode selects lazy or full external resolution. The default is Lazy.
func WithMode(m Mode) Option {
	return func(c *config) { c.mode = m }
}

// WithHandler extends this archive's handler chain. The process-wide
// defaults are copied per archive, so registration never leaks between
// instances.
func WithHandler(h Handler, pos Position) Option {
	return func(c *config) { c.handlers.Register(h, pos) }
}

// WithItemType registers a decode function for an external item type,
// e.g. a custom record encoding. Members of this type are named
// "<key>.<ext>".
func WithItemType(name, ext string, decode DecodeFunc) Option {
	return func(c *config) {
		c.types[name] = ItemType{Name: name, Ext: ext, Decode: decode}
	}
}

// SkipChecksumValidation disables verification of the per-member
// checksums recorded in the metadata (faster but less safe).
func SkipChecksumValidation() Option {
	return func(c *config) { c.verify = false }
}

// LoadedArchive is the mapping-like facade over an open archive. It
// composes the container reader, the external item store and the root
// proxy node, and owns the archive handle for its whole lifetime.
//
// A LoadedArchive performs no internal locking. Callers sharing one
// instance across goroutines must serialize access, or open one
// instance per goroutine over the same path.
type LoadedArchive struct {
	reader    *archive.Reader
	meta      *archive.Metadata
	mode      Mode
	handlers  *Registry
	externals externalStore
	root      *Node
	closed    bool
}

// Open opens an archive and prepares its external item store. All
// structural validation (container readable, control documents present
// and well formed, every declared external backed by a member) happens
// here; in Lazy mode only payload decoding is deferred. On any failure
// the archive handle is released before returning.
func Open(path string, opts ...Option) (*LoadedArchive, error) {
	cfg := &config{
		mode:     Lazy,
		verify:   true,
		handlers: NewRegistry(DefaultHandlers()...),
		types:    defaultItemTypes(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	reader, err := archive.OpenReader(path)
	if err != nil {
		return nil, err
	}

	meta, err := reader.ReadMetadata()
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	tree, err := reader.ReadMain()
	if err != nil {
		_ = reader.Close()
		return nil, err
	}
	switch tree.(type) {
	case map[string]any, []any:
	default:
		_ = reader.Close()
		return nil, fmt.Errorf("%w: got %T", ErrRootNotContainer, tree)
	}

	z := &LoadedArchive{
		reader:   reader,
		meta:     meta,
		mode:     cfg.mode,
		handlers: cfg.handlers,
	}

	switch cfg.mode {
	case Full:
		z.externals, err = newFullStore(reader, meta, cfg.types, cfg.verify)
	default:
		z.externals, err = newLazyStore(reader, meta, cfg.types, cfg.verify)
	}
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	z.root = newNode(z, tree, nil)
	return z, nil
}

func (z *LoadedArchive) check() error {
	if z.closed {
		return ErrClosed
	}
	return nil
}

// Path returns the archive's file path.
func (z *LoadedArchive) Path() string {
	return z.reader.Path()
}

// Mode returns the configured externals resolution mode.
func (z *LoadedArchive) Mode() Mode {
	return z.mode
}

// Metadata returns the parsed metadata document.
func (z *LoadedArchive) Metadata() *archive.Metadata {
	return z.meta
}

// Root returns the proxy view over the main tree.
func (z *LoadedArchive) Root() (*Node, error) {
	if err := z.check(); err != nil {
		return nil, err
	}
	return z.root, nil
}

// Get fetches a direct child of the main tree. See Node.Get.
func (z *LoadedArchive) Get(key any) (any, error) {
	if err := z.check(); err != nil {
		return nil, err
	}
	return z.root.Get(key)
}

// Keys produces the main tree's keys or indices.
func (z *LoadedArchive) Keys() (iter.Seq[any], error) {
	if err := z.check(); err != nil {
		return nil, err
	}
	return z.root.Keys(), nil
}

// Len returns the count of the main tree's direct children.
func (z *LoadedArchive) Len() (int, error) {
	if err := z.check(); err != nil {
		return 0, err
	}
	return z.root.Len(), nil
}

// Materialize deeply resolves the whole tree into plain Go values.
func (z *LoadedArchive) Materialize() (any, error) {
	if err := z.check(); err != nil {
		return nil, err
	}
	return z.root.Materialize()
}

// Close releases the archive handle. Safe to call multiple times;
// any access after Close fails with ErrClosed.
func (z *LoadedArchive) Close() error {
	if z.closed {
		return nil
	}
	z.closed = true
	return z.reader.Close()
}
