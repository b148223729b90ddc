package loading

import (
	"fmt"
	"iter"
	"sort"
)

// Node is a read-only view over one container (mapping or sequence) of
// the raw main tree. Access through Get transparently dereferences
// reference tokens and decodes tagged values; nested containers are
// re-wrapped in fresh Nodes on every access, so two reads of the same
// path return equal but distinct views. Nodes hold a non-owning
// back-reference to their LoadedArchive and never outlive its handle:
// any Get after Close fails with ErrClosed.
type Node struct {
	z    *LoadedArchive
	data any // map[string]any or []any
	path Path
}

func newNode(z *LoadedArchive, data any, path Path) *Node {
	return &Node{z: z, data: data, path: path}
}

// Path returns the node's location within the main tree.
func (n *Node) Path() Path {
	return n.path
}

// IsMapping reports whether the node wraps a mapping (as opposed to a
// sequence).
func (n *Node) IsMapping() bool {
	_, ok := n.data.(map[string]any)
	return ok
}

// Get fetches one direct child. Mappings take string keys, sequences
// take int indices; any other pairing fails with ErrKeyTypeMismatch.
// The raw child runs through the handler chain before being returned,
// so callers never see reference tokens or tagged encodings.
func (n *Node) Get(key any) (any, error) {
	if err := n.z.check(); err != nil {
		return nil, err
	}

	var raw any
	switch c := n.data.(type) {
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("%w: mapping at %s requires a string key, got %T", ErrKeyTypeMismatch, n.path, key)
		}
		raw, ok = c[k]
		if !ok {
			return nil, fmt.Errorf("%w: %q at %s", ErrKeyNotFound, k, n.path)
		}
	case []any:
		i, ok := key.(int)
		if !ok {
			return nil, fmt.Errorf("%w: sequence at %s requires an int index, got %T", ErrKeyTypeMismatch, n.path, key)
		}
		if i < 0 || i >= len(c) {
			return nil, fmt.Errorf("%w: index %d at %s (len %d)", ErrIndexOutOfRange, i, n.path, len(c))
		}
		raw = c[i]
	default:
		return nil, fmt.Errorf("node at %s wraps a non-container %T", n.path, n.data)
	}

	childPath := n.path.child(key)
	resolved, err := n.z.handlers.Resolve(n.z, raw, childPath)
	if err != nil {
		return nil, err
	}

	switch resolved.(type) {
	case map[string]any, []any:
		return newNode(n.z, resolved, childPath), nil
	default:
		return resolved, nil
	}
}

// Len returns the count of direct children.
func (n *Node) Len() int {
	switch c := n.data.(type) {
	case map[string]any:
		return len(c)
	case []any:
		return len(c)
	default:
		return 0
	}
}

// Keys produces the container's keys or indices. The sequence is
// derived fresh from the underlying container on each range, so it is
// restartable. Mapping keys are yielded in sorted order.
func (n *Node) Keys() iter.Seq[any] {
	return func(yield func(any) bool) {
		switch c := n.data.(type) {
		case map[string]any:
			keys := make([]string, 0, len(c))
			for k := range c {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if !yield(k) {
					return
				}
			}
		case []any:
			for i := range c {
				if !yield(i) {
					return
				}
			}
		}
	}
}

// Materialize deeply resolves the node into plain Go values: nested
// maps and slices with every reference token and tagged value decoded.
func (n *Node) Materialize() (any, error) {
	if n.IsMapping() {
		out := make(map[string]any, n.Len())
		for key := range n.Keys() {
			val, err := n.Get(key)
			if err != nil {
				return nil, err
			}
			if child, ok := val.(*Node); ok {
				if val, err = child.Materialize(); err != nil {
					return nil, err
				}
			}
			out[key.(string)] = val
		}
		return out, nil
	}

	out := make([]any, 0, n.Len())
	for key := range n.Keys() {
		val, err := n.Get(key)
		if err != nil {
			return nil, err
		}
		if child, ok := val.(*Node); ok {
			if val, err = child.Materialize(); err != nil {
				return nil, err
			}
		}
		out = append(out, val)
	}
	return out, nil
}
