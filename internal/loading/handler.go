package loading

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/zanj/internal/archive"
	"github.com/born-ml/zanj/internal/array"
)

// Reserved discriminator fields, shared with the writer side.
const (
	RefKey          = archive.RefKey
	FormatKey       = archive.FormatKey
	FormatArrayList = archive.FormatArrayList
	FormatArrayHex  = archive.FormatArrayHex

	externalPrefix = archive.ExternalFormatPrefix
)

// Path locates a value within the main tree, as the sequence of keys and
// indices walked to reach it. Used for error context and handler checks.
type Path []any

// String renders the path in dotted form, e.g. "model.layers.0.weight".
func (p Path) String() string {
	if len(p) == 0 {
		return "<root>"
	}
	parts := make([]string, len(p))
	for i, e := range p {
		switch v := e.(type) {
		case string:
			parts[i] = v
		case int:
			parts[i] = strconv.Itoa(v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ".")
}

func (p Path) child(key any) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, key)
}

// Handler recognizes and decodes one family of tagged values.
type Handler struct {
	// Check reports whether this handler applies to the value.
	Check func(v any, path Path) bool
	// Load decodes the value. The archive is passed so handlers can
	// reach the external item store.
	Load func(z *LoadedArchive, v any, path Path) (any, error)
	// Desc is a human-readable description of the handler.
	Desc string
}

// Position selects where Register places a handler in the chain.
type Position int

const (
	// Append places the handler after all existing ones.
	Append Position = iota
	// Prepend places the handler first, shadowing existing handlers on
	// overlapping checks.
	Prepend
)

// Registry is an ordered handler chain. Earlier handlers shadow later
// ones: Resolve returns the result of the first handler whose Check
// accepts the value.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates a registry with the given handlers, in order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: append([]Handler(nil), handlers...)}
}

// Register extends the chain at the given position.
func (r *Registry) Register(h Handler, pos Position) {
	if pos == Prepend {
		r.handlers = append([]Handler{h}, r.handlers...)
		return
	}
	r.handlers = append(r.handlers, h)
}

// Resolve runs the value through the chain. Non-container values and
// containers no handler accepts pass through unchanged.
func (r *Registry) Resolve(z *LoadedArchive, v any, path Path) (any, error) {
	switch v.(type) {
	case map[string]any, []any:
	default:
		return v, nil
	}
	for _, h := range r.handlers {
		if h.Check(v, path) {
			out, err := h.Load(z, v, path)
			if err != nil {
				return nil, fmt.Errorf("handler %q at %s: %w", h.Desc, path, err)
			}
			return out, nil
		}
	}
	return v, nil
}

// DefaultHandlers returns a fresh copy of the default handler chain:
// reference tokens first (so external indirection always wins over
// generic tagged-value recognition), then the inline array encodings.
// The returned slice is owned by the caller; mutating it never affects
// other archives.
func DefaultHandlers() []Handler {
	return []Handler{
		{
			Check: func(v any, path Path) bool {
				m, ok := v.(map[string]any)
				if !ok || len(m) != 1 {
					return false
				}
				_, ok = m[RefKey].(string)
				return ok
			},
			Load: func(z *LoadedArchive, v any, path Path) (any, error) {
				key := v.(map[string]any)[RefKey].(string)
				return z.externals.Get(key)
			},
			Desc: "reference token ($ref)",
		},
		{
			Check: func(v any, path Path) bool {
				m, ok := v.(map[string]any)
				if !ok {
					return false
				}
				format, ok := m[FormatKey].(string)
				if !ok || !strings.HasPrefix(format, externalPrefix) {
					return false
				}
				_, ok = m["key"].(string)
				return ok
			},
			Load: func(z *LoadedArchive, v any, path Path) (any, error) {
				key := v.(map[string]any)["key"].(string)
				return z.externals.Get(key)
			},
			Desc: "external format token",
		},
		{
			Check: taggedFormatCheck(FormatArrayList),
			Load: func(z *LoadedArchive, v any, path Path) (any, error) {
				m := v.(map[string]any)
				dtype, shape, err := taggedArrayMeta(m)
				if err != nil {
					return nil, err
				}
				raw, ok := m["data"].([]any)
				if !ok {
					return nil, fmt.Errorf("%s payload must be a flat list of numbers", FormatArrayList)
				}
				flat := make([]float64, len(raw))
				for i, e := range raw {
					n, ok := e.(float64)
					if !ok {
						if b, isBool := e.(bool); isBool {
							if b {
								n = 1
							}
							flat[i] = n
							continue
						}
						return nil, fmt.Errorf("%s payload element %d is %T, not a number", FormatArrayList, i, e)
					}
					flat[i] = n
				}
				return array.FromNumbers(flat, shape, dtype)
			},
			Desc: "array_list_meta loader",
		},
		{
			Check: taggedFormatCheck(FormatArrayHex),
			Load: func(z *LoadedArchive, v any, path Path) (any, error) {
				m := v.(map[string]any)
				dtype, shape, err := taggedArrayMeta(m)
				if err != nil {
					return nil, err
				}
				s, ok := m["data"].(string)
				if !ok {
					return nil, fmt.Errorf("%s payload must be a hex string", FormatArrayHex)
				}
				raw, err := hex.DecodeString(s)
				if err != nil {
					return nil, fmt.Errorf("%s payload is not valid hex: %w", FormatArrayHex, err)
				}
				return array.NewFromBytes(shape, dtype, raw)
			},
			Desc: "array_hex_meta loader",
		},
	}
}

// taggedFormatCheck builds a Check matching mappings whose discriminator
// equals the given format name.
func taggedFormatCheck(format string) func(v any, path Path) bool {
	return func(v any, path Path) bool {
		m, ok := v.(map[string]any)
		if !ok {
			return false
		}
		f, ok := m[FormatKey].(string)
		return ok && f == format
	}
}

// taggedArrayMeta extracts the dtype and shape fields shared by the
// inline tagged array encodings.
func taggedArrayMeta(m map[string]any) (array.DataType, array.Shape, error) {
	ds, ok := m["dtype"].(string)
	if !ok {
		return 0, nil, fmt.Errorf("tagged array is missing dtype")
	}
	dtype, ok := array.ParseDataType(ds)
	if !ok {
		return 0, nil, fmt.Errorf("tagged array has unsupported dtype %q", ds)
	}

	rawShape, ok := m["shape"].([]any)
	if !ok {
		return 0, nil, fmt.Errorf("tagged array is missing shape")
	}
	shape := make(array.Shape, len(rawShape))
	for i, e := range rawShape {
		n, ok := e.(float64)
		if !ok {
			return 0, nil, fmt.Errorf("tagged array shape dimension %d is %T, not a number", i, e)
		}
		shape[i] = int(n)
	}
	if err := shape.Validate(); err != nil {
		return 0, nil, fmt.Errorf("tagged array shape: %w", err)
	}

	return dtype, shape, nil
}
