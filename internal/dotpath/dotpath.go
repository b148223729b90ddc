// Package dotpath converts between dotted key paths and nested maps.
package dotpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Join renders a path of keys and indices in dotted form, e.g.
// ["model", "layers", 0] -> "model.layers.0".
func Join(path []any) string {
	parts := make([]string, len(path))
	for i, e := range path {
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

// Split breaks a dotted path into its segments. The empty string splits
// into no segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Nested converts a flat map with dot-separated keys into a nested map,
// e.g. {"a.b": 1, "a.c": 2} -> {"a": {"b": 1, "c": 2}}. A key whose
// prefix collides with a non-map value is an error.
func Nested(flat map[string]any) (map[string]any, error) {
	nested := make(map[string]any, len(flat))
	for key, value := range flat {
		segs := Split(key)
		if len(segs) == 0 {
			return nil, fmt.Errorf("empty key")
		}
		current := nested
		for _, seg := range segs[:len(segs)-1] {
			child, ok := current[seg]
			if !ok {
				m := make(map[string]any)
				current[seg] = m
				current = m
				continue
			}
			m, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("key %q: segment %q already holds a non-map value", key, seg)
			}
			current = m
		}
		last := segs[len(segs)-1]
		if _, exists := current[last]; exists {
			return nil, fmt.Errorf("key %q: segment %q already holds a value", key, last)
		}
		current[last] = value
	}
	return nested, nil
}

// Flatten is the inverse of Nested: it converts a nested map into a
// flat map with dot-separated keys. Non-map leaves are kept as-is;
// empty maps flatten to nothing.
func Flatten(nested map[string]any) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, "", nested)
	return flat
}

func flattenInto(flat map[string]any, prefix string, m map[string]any) {
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			flattenInto(flat, full, child)
			continue
		}
		flat[full] = value
	}
}
