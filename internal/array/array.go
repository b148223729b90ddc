package array

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"unsafe"
)

// Array is an immutable dense numeric array: shape, element type, and a
// flat little-endian data buffer in row-major order.
type Array struct {
	shape Shape
	dtype DataType
	data  []byte
}

// byteSize returns the buffer size for a validated shape and dtype,
// rejecting sizes that overflow an int.
func byteSize(shape Shape, dtype DataType) (int, error) {
	n := shape.NumElements()
	if n > math.MaxInt/dtype.Size() {
		return 0, fmt.Errorf("array of %d %s elements exceeds addressable size", n, dtype)
	}
	return n * dtype.Size(), nil
}

// New creates a zero-filled Array with the given shape and type.
func New(shape Shape, dtype DataType) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	size, err := byteSize(shape, dtype)
	if err != nil {
		return nil, err
	}
	return &Array{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]byte, size),
	}, nil
}

// NewFromBytes creates an Array over a raw little-endian data buffer.
// The buffer length must match the shape and dtype exactly.
func NewFromBytes(shape Shape, dtype DataType, data []byte) (*Array, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	want, err := byteSize(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != want {
		return nil, fmt.Errorf("data size mismatch: got %d bytes, want %d for shape %v dtype %s",
			len(data), want, shape, dtype)
	}
	return &Array{shape: shape.Clone(), dtype: dtype, data: data}, nil
}

// Shape returns the array's shape.
func (a *Array) Shape() Shape {
	return a.shape
}

// DType returns the array's element type.
func (a *Array) DType() DataType {
	return a.dtype
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return a.shape.NumElements()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (a *Array) Data() []byte {
	return a.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the array's dtype is not Float32.
func (a *Array) AsFloat32() []float32 {
	if a.dtype != Float32 {
		panic(fmt.Sprintf("array dtype is %s, not float32", a.dtype))
	}
	if len(a.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&a.data[0])), a.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the array's dtype is not Float64.
func (a *Array) AsFloat64() []float64 {
	if a.dtype != Float64 {
		panic(fmt.Sprintf("array dtype is %s, not float64", a.dtype))
	}
	if len(a.data) == 0 {
		return nil
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&a.data[0])), a.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the array's dtype is not Int32.
func (a *Array) AsInt32() []int32 {
	if a.dtype != Int32 {
		panic(fmt.Sprintf("array dtype is %s, not int32", a.dtype))
	}
	if len(a.data) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&a.data[0])), a.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the array's dtype is not Int64.
func (a *Array) AsInt64() []int64 {
	if a.dtype != Int64 {
		panic(fmt.Sprintf("array dtype is %s, not int64", a.dtype))
	}
	if len(a.data) == 0 {
		return nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&a.data[0])), a.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the array's dtype is not Uint8.
func (a *Array) AsUint8() []uint8 {
	if a.dtype != Uint8 {
		panic(fmt.Sprintf("array dtype is %s, not uint8", a.dtype))
	}
	return a.data
}

// AsBool interprets the data as []bool.
// Panics if the array's dtype is not Bool.
func (a *Array) AsBool() []bool {
	if a.dtype != Bool {
		panic(fmt.Sprintf("array dtype is %s, not bool", a.dtype))
	}
	if len(a.data) == 0 {
		return nil
	}
	return unsafe.Slice((*bool)(unsafe.Pointer(&a.data[0])), a.NumElements())
}

// Equal reports whether two arrays have the same shape, dtype and data.
func (a *Array) Equal(other *Array) bool {
	if other == nil {
		return false
	}
	return a.dtype == other.dtype &&
		a.shape.Equal(other.shape) &&
		bytes.Equal(a.data, other.data)
}

// String returns a short description of the array.
func (a *Array) String() string {
	return fmt.Sprintf("Array(%s, shape=%v)", a.dtype, []int(a.shape))
}

// Flat converts the elements to a flat []any of JSON-ready values.
func (a *Array) Flat() []any {
	flat := make([]any, a.NumElements())
	switch a.dtype {
	case Float32:
		for i, v := range a.AsFloat32() {
			flat[i] = v
		}
	case Float64:
		for i, v := range a.AsFloat64() {
			flat[i] = v
		}
	case Int32:
		for i, v := range a.AsInt32() {
			flat[i] = v
		}
	case Int64:
		for i, v := range a.AsInt64() {
			flat[i] = v
		}
	case Uint8:
		for i, v := range a.AsUint8() {
			flat[i] = v
		}
	case Bool:
		for i, v := range a.AsBool() {
			flat[i] = v
		}
	}
	return flat
}

// MarshalJSON encodes the array in the list-encoded tagged mapping form
// used inline in archive trees, so materialized trees stay printable.
func (a *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"__format__": "array_list_meta",
		"dtype":      a.dtype.String(),
		"shape":      []int(a.shape),
		"data":       a.Flat(),
	})
}

// FromFloat32s creates a Float32 array from a flat slice.
func FromFloat32s(data []float32, shape Shape) (*Array, error) {
	a, err := New(shape, Float32)
	if err != nil {
		return nil, err
	}
	if len(data) != a.NumElements() {
		return nil, fmt.Errorf("got %d elements, shape %v wants %d", len(data), shape, a.NumElements())
	}
	copy(a.AsFloat32(), data)
	return a, nil
}

// FromFloat64s creates a Float64 array from a flat slice.
func FromFloat64s(data []float64, shape Shape) (*Array, error) {
	a, err := New(shape, Float64)
	if err != nil {
		return nil, err
	}
	if len(data) != a.NumElements() {
		return nil, fmt.Errorf("got %d elements, shape %v wants %d", len(data), shape, a.NumElements())
	}
	copy(a.AsFloat64(), data)
	return a, nil
}

// FromInt64s creates an Int64 array from a flat slice.
func FromInt64s(data []int64, shape Shape) (*Array, error) {
	a, err := New(shape, Int64)
	if err != nil {
		return nil, err
	}
	if len(data) != a.NumElements() {
		return nil, fmt.Errorf("got %d elements, shape %v wants %d", len(data), shape, a.NumElements())
	}
	copy(a.AsInt64(), data)
	return a, nil
}

// FromNumbers creates an array of the given dtype from a flat slice of
// float64 values, converting each element. This is the decode path for
// list-encoded tagged arrays, where JSON numbers arrive as float64.
func FromNumbers(data []float64, shape Shape, dtype DataType) (*Array, error) {
	a, err := New(shape, dtype)
	if err != nil {
		return nil, err
	}
	if len(data) != a.NumElements() {
		return nil, fmt.Errorf("got %d elements, shape %v wants %d", len(data), shape, a.NumElements())
	}
	switch dtype {
	case Float32:
		dst := a.AsFloat32()
		for i, v := range data {
			dst[i] = float32(v)
		}
	case Float64:
		copy(a.AsFloat64(), data)
	case Int32:
		dst := a.AsInt32()
		for i, v := range data {
			dst[i] = int32(v)
		}
	case Int64:
		dst := a.AsInt64()
		for i, v := range data {
			dst[i] = int64(v)
		}
	case Uint8:
		dst := a.AsUint8()
		for i, v := range data {
			dst[i] = uint8(v)
		}
	case Bool:
		dst := a.AsBool()
		for i, v := range data {
			dst[i] = v != 0
		}
	}
	return a, nil
}
