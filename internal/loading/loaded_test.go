package loading

import (
	"encoding/hex"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/born-ml/zanj/internal/archive"
	"github.com/born-ml/zanj/internal/array"
)

func TestOpenLazyAndFullAgree(t *testing.T) {
	arr := testArray(t)
	payload := npyBytes(t, arr)
	sum := blake3.Sum256(payload)

	tree := map[string]any{
		"weights": map[string]any{archive.RefKey: "model.weights"},
		"config":  map[string]any{"depth": float64(4)},
		"tags":    []any{"a", "b"},
	}
	path := buildArchive(t, tree,
		map[string]archive.ExternalItemInfo{
			"model.weights": {
				ItemType: archive.ItemNDArray,
				Path:     []any{"model", "weights"},
				Checksum: hex.EncodeToString(sum[:]),
			},
		},
		map[string][]byte{archive.MemberName("model.weights", archive.ExtNDArray): payload},
	)

	lazy, err := Open(path)
	require.NoError(t, err)
	defer lazy.Close()
	full, err := Open(path, WithMode(Full))
	require.NoError(t, err)
	defer full.Close()

	assert.Equal(t, Lazy, lazy.Mode())
	assert.Equal(t, Full, full.Mode())

	lm, err := lazy.Materialize()
	require.NoError(t, err)
	fm, err := full.Materialize()
	require.NoError(t, err)
	assert.Equal(t, lm, fm)

	got, err := lazy.Get("weights")
	require.NoError(t, err)
	assert.True(t, arr.Equal(got.(*array.Array)), "dereferenced array differs")
}

func TestOpenMissingExternalMember(t *testing.T) {
	tree := map[string]any{"arr": map[string]any{archive.RefKey: "arr"}}
	externals := map[string]archive.ExternalItemInfo{
		"arr": {ItemType: archive.ItemNDArray, Path: []any{"arr"}},
	}
	path := buildArchive(t, tree, externals, nil)

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrMissingExternal)
	assert.ErrorContains(t, err, "arr.npy")

	_, err = Open(path, WithMode(Full))
	assert.ErrorIs(t, err, archive.ErrMemberMissing)
}

func TestOpenRootMustBeContainer(t *testing.T) {
	path := buildArchive(t, "just a string", nil, nil)
	_, err := Open(path)
	assert.ErrorIs(t, err, ErrRootNotContainer)
}

func TestCloseIdempotentAndGuardsAccess(t *testing.T) {
	z := openTree(t, map[string]any{"x": float64(1)})

	require.NoError(t, z.Close())
	require.NoError(t, z.Close())

	_, err := z.Get("x")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = z.Root()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = z.Keys()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = z.Len()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = z.Materialize()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWithHandlerExtendsChain(t *testing.T) {
	tree := map[string]any{"greeting": map[string]any{"__format__": "shout", "text": "hi"}}
	path := buildArchive(t, tree, nil, nil)

	shout := Handler{
		Check: func(v any, p Path) bool {
			m, ok := v.(map[string]any)
			return ok && m[FormatKey] == "shout"
		},
		Load: func(z *LoadedArchive, v any, p Path) (any, error) {
			return v.(map[string]any)["text"].(string) + "!", nil
		},
		Desc: "shout format",
	}

	z, err := Open(path, WithHandler(shout, Prepend))
	require.NoError(t, err)
	defer z.Close()

	got, err := z.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)
}

func TestWithItemTypeCBOR(t *testing.T) {
	record := map[string]any{"name": "sample", "tags": []any{"a", "b"}}
	payload, err := cbor.Marshal(record)
	require.NoError(t, err)

	tree := map[string]any{"rec": map[string]any{archive.RefKey: "rec"}}
	externals := map[string]archive.ExternalItemInfo{
		"rec": {ItemType: "cbor", Path: []any{"rec"}},
	}
	path := buildArchive(t, tree, externals, map[string][]byte{"rec.cbor": payload})

	// Without the custom type registered, lazy open succeeds (the member
	// name cannot be derived, so existence checking is skipped) and the
	// failure surfaces at first access.
	z, err := Open(path)
	require.NoError(t, err)
	_, err = z.Get("rec")
	assert.ErrorIs(t, err, ErrUnknownItemType)
	require.NoError(t, z.Close())

	decodeCBOR := func(r io.Reader) (any, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		dm, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
		if err != nil {
			return nil, err
		}
		var v any
		if err := dm.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	}

	z, err = Open(path, WithItemType("cbor", "cbor", decodeCBOR))
	require.NoError(t, err)
	defer z.Close()

	got, err := z.Get("rec")
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestParseMode(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Mode
	}{
		{"lazy", Lazy},
		{"full", Full},
	} {
		m, err := ParseMode(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, m)
		assert.Equal(t, tc.in, m.String())
	}
	_, err := ParseMode("eager")
	assert.ErrorContains(t, err, fmt.Sprintf("%q", "eager"))
}
