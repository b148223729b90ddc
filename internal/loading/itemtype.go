package loading

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/born-ml/zanj/internal/archive"
	"github.com/born-ml/zanj/internal/array"
)

// DecodeFunc turns the byte stream of an archive member into a value.
type DecodeFunc func(r io.Reader) (any, error)

// ItemType describes one external item type: its metadata name, the
// file extension of its archive members, and its decode function.
type ItemType struct {
	Name   string
	Ext    string
	Decode DecodeFunc
}

// Built-in external item type names.
const (
	ItemNDArray = archive.ItemNDArray
	ItemJSONL   = archive.ItemJSONL
)

// defaultItemTypes returns a fresh copy of the built-in decode table.
// Each archive session extends its own copy; the defaults are never
// mutated in place.
func defaultItemTypes() map[string]ItemType {
	return map[string]ItemType{
		ItemNDArray: {Name: ItemNDArray, Ext: archive.ExtNDArray, Decode: decodeNDArray},
		ItemJSONL:   {Name: ItemJSONL, Ext: archive.ExtJSONL, Decode: decodeJSONL},
	}
}

// decodeNDArray deserializes a dense numeric array from .npy bytes.
func decodeNDArray(r io.Reader) (any, error) {
	return array.ReadNPY(r)
}

// decodeJSONL parses each line of the stream as one JSON record and
// materializes the full record sequence. Blank lines are skipped.
func decodeJSONL(r io.Reader) (any, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	records := []any{}
	lineno := 0
	for sc.Scan() {
		lineno++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec any
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("jsonl line %d: %w", lineno, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jsonl stream: %w", err)
	}
	return records, nil
}
