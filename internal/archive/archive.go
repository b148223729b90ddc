// Package archive reads and writes the ZANJ zip container: two JSON
// control documents (main tree and metadata) plus one member per
// external item.
package archive

// Control document member names. Changing these breaks archive
// compatibility.
const (
	MainDocument = "__zanj__.json"
	MetaDocument = "__zanj_meta__.json"
)

// FormatVersion is written into the metadata document of new archives.
const FormatVersion = "0.2.0"

// Reserved fields in the main tree document.
const (
	// RefKey marks a reference token: a mapping with exactly this one
	// key, whose string value names an external item.
	RefKey = "$ref"

	// FormatKey is the discriminator field of a tagged value.
	FormatKey = "__format__"

	// Tagged array format names.
	FormatArrayList = "array_list_meta"
	FormatArrayHex  = "array_hex_meta"

	// ExternalFormatPrefix is the discriminator prefix older writers
	// emit for externalized values instead of a RefKey token.
	ExternalFormatPrefix = "external:"
)

// Built-in external item type names and their member extensions.
const (
	ItemNDArray = "ndarray"
	ExtNDArray  = "npy"
	ItemJSONL   = "jsonl"
	ExtJSONL    = "jsonl"
)

// ExternalItemInfo describes one external item declared in the metadata
// document. The key it is stored under in ExternalsInfo also determines
// the archive member name.
type ExternalItemInfo struct {
	ItemType string `json:"item_type"`          // e.g. "ndarray", "jsonl"
	Path     []any  `json:"path,omitempty"`     // location of the item in the main tree
	Checksum string `json:"checksum,omitempty"` // hex BLAKE3 of the member bytes
}

// Metadata is the parsed metadata control document.
type Metadata struct {
	FormatVersion string                      `json:"format_version,omitempty"`
	Created       string                      `json:"created,omitempty"` // RFC 3339
	Sysinfo       map[string]any              `json:"sysinfo,omitempty"`
	ExternalsInfo map[string]ExternalItemInfo `json:"externals_info"`
}

// MemberName returns the archive member name for an external key and its
// item type's file extension.
func MemberName(key, ext string) string {
	return key + "." + ext
}
