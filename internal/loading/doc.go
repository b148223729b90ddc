// Package loading reconstructs the nested value tree stored in a ZANJ
// archive, resolving external payloads and tagged encodings transparently.
//
// A ZANJ archive is a zip container with two JSON control documents:
//
//	__zanj__.json       the main value tree
//	__zanj_meta__.json  metadata, including the external-item table
//
// Large payloads (dense arrays, record sequences) live as separate
// archive members and are referenced from the tree by tokens:
//
//	{"$ref": "model.weights"}
//
// Loading is built from four pieces:
//
//   - Registry: an ordered predicate→decoder chain recognizing tagged
//     values (reference tokens, inline array encodings). First match
//     wins; new formats are added by registering a Handler, never by
//     touching dispatch code.
//   - externalStore: lazy (re-read on every access) or full (all decoded
//     at open) resolution of external members, via a per-type decode
//     function table.
//   - Node: a read-only recursive proxy over the raw tree that runs every
//     fetched child through the handler chain and re-wraps containers.
//   - LoadedArchive: the facade composing the above behind a mapping-like
//     surface; it owns the archive handle until Close.
//
// Example:
//
//	z, err := loading.Open("model.zanj", loading.WithMode(loading.Lazy))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer z.Close()
//	weights, err := z.Get("weights") // *array.Array, read from model.weights.npy
package loading
