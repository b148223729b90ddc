// Package zanj reads and writes ZANJ archives: zip containers holding a
// nested tree of JSON values alongside externally-stored payloads (dense
// numeric arrays, line-delimited record sequences) referenced from the
// tree by indirection tokens.
//
// Loading reconstructs the original nested structure with all
// indirection resolved transparently:
//
//	z, err := zanj.Open("model.zanj")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer z.Close()
//
//	weights, err := z.Get("weights") // *zanj.Array, read from its .npy member
//	config, err := z.Get("config")   // *zanj.Node over the nested mapping
//
// External payloads resolve lazily by default (re-read on every access);
// zanj.WithMode(zanj.Full) decodes everything once at open time. Both
// modes yield equal values for every reachable path.
//
// Saving walks a tree of plain Go values, externalizing *zanj.Array
// values above a size threshold and zanj.JSONLines record sequences:
//
//	err := zanj.Save("out.zanj", map[string]any{
//	    "name":    "example",
//	    "weights": bigArray,                       // -> weights.npy member
//	    "log":     zanj.JSONLines{rec1, rec2},     // -> log.jsonl member
//	})
//
// New tagged-value formats and external item types are added by
// registering handlers and decode functions per archive; dispatch logic
// is never modified. See zanj.WithHandler and zanj.WithItemType.
package zanj
