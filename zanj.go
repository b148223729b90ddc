package zanj

import (
	"github.com/born-ml/zanj/internal/archive"
	"github.com/born-ml/zanj/internal/array"
	"github.com/born-ml/zanj/internal/loading"
	"github.com/born-ml/zanj/internal/saving"
)

// Type aliases for the public API.

// Array is a dense numeric array with a dtype and shape.
type Array = array.Array

// DataType represents the element type of an Array.
type DataType = array.DataType

// Element type constants.
const (
	Float32 DataType = array.Float32
	Float64 DataType = array.Float64
	Int32   DataType = array.Int32
	Int64   DataType = array.Int64
	Uint8   DataType = array.Uint8
	Bool    DataType = array.Bool
)

// Shape represents the dimensions of an Array.
type Shape = array.Shape

// Array constructors.
var (
	NewArray          = array.New
	ArrayFromBytes    = array.NewFromBytes
	ArrayFromFloat32s = array.FromFloat32s
	ArrayFromFloat64s = array.FromFloat64s
	ArrayFromInt64s   = array.FromInt64s
)

// LoadedArchive is an open archive presenting a mapping-like view over
// its main tree. It owns the archive handle until Close.
type LoadedArchive = loading.LoadedArchive

// Node is a read-only proxy view over one container of the tree.
type Node = loading.Node

// Path locates a value within the tree.
type Path = loading.Path

// Handler recognizes and decodes one family of tagged values.
type Handler = loading.Handler

// DecodeFunc turns an external member's byte stream into a value.
type DecodeFunc = loading.DecodeFunc

// Position selects where a registered handler lands in the chain.
type Position = loading.Position

// Handler positions.
const (
	Append  Position = loading.Append
	Prepend Position = loading.Prepend
)

// Mode selects how external items are resolved.
type Mode = loading.Mode

// Externals resolution modes.
const (
	// Lazy decodes external items on demand, on every access.
	Lazy Mode = loading.Lazy
	// Full decodes all external items eagerly at open time.
	Full Mode = loading.Full
)

// ParseMode parses "lazy" or "full".
var ParseMode = loading.ParseMode

// Option configures Open.
type Option = loading.Option

// Open options.
var (
	WithMode               = loading.WithMode
	WithHandler            = loading.WithHandler
	WithItemType           = loading.WithItemType
	SkipChecksumValidation = loading.SkipChecksumValidation
)

// Open opens a ZANJ archive for reading.
func Open(path string, opts ...Option) (*LoadedArchive, error) {
	return loading.Open(path, opts...)
}

// JSONLines marks a record sequence for externalization as a .jsonl
// member on save.
type JSONLines = saving.JSONLines

// SaveOption configures Save.
type SaveOption = saving.SaveOption

// ArrayMode selects the inline encoding of small arrays on save.
type ArrayMode = saving.ArrayMode

// Inline array encodings.
const (
	ArrayList ArrayMode = saving.ArrayList
	ArrayHex  ArrayMode = saving.ArrayHex
)

// Save options.
var (
	WithExternalThreshold = saving.WithExternalThreshold
	WithArrayMode         = saving.WithArrayMode
	WithoutChecksums      = saving.WithoutChecksums
)

// Save writes a nested value tree to a ZANJ archive at path.
func Save(path string, tree any, opts ...SaveOption) error {
	return saving.Save(path, tree, opts...)
}

// Metadata is the parsed metadata control document.
type Metadata = archive.Metadata

// ExternalItemInfo describes one declared external item.
type ExternalItemInfo = archive.ExternalItemInfo

// Errors surfaced by loading. Match with errors.Is.
var (
	ErrNotArchive        = archive.ErrNotArchive
	ErrMissingControlDoc = archive.ErrMissingControlDoc
	ErrMalformedDocument = archive.ErrMalformedDocument
	ErrMemberMissing     = archive.ErrMemberMissing
	ErrMissingExternal   = loading.ErrMissingExternal
	ErrUnknownItemType   = loading.ErrUnknownItemType
	ErrKeyTypeMismatch   = loading.ErrKeyTypeMismatch
	ErrKeyNotFound       = loading.ErrKeyNotFound
	ErrIndexOutOfRange   = loading.ErrIndexOutOfRange
	ErrClosed            = loading.ErrClosed
	ErrChecksumMismatch  = loading.ErrChecksumMismatch
)

