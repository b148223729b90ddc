package array

import (
	"testing"
)

func TestNewZeroFilled(t *testing.T) {
	a, err := New(Shape{2, 3}, Float32)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.NumElements() != 6 {
		t.Errorf("NumElements = %d, want 6", a.NumElements())
	}
	if len(a.Data()) != 6*4 {
		t.Errorf("data size = %d, want 24", len(a.Data()))
	}
	for i, v := range a.AsFloat32() {
		if v != 0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}

func TestNewFromBytesSizeMismatch(t *testing.T) {
	_, err := NewFromBytes(Shape{2, 2}, Float64, make([]byte, 3))
	if err == nil {
		t.Fatal("expected error for mismatched buffer size")
	}
}

func TestFromFloat64sRoundTrip(t *testing.T) {
	data := []float64{1.5, -2.25, 3, 4, 5, 6}
	a, err := FromFloat64s(data, Shape{2, 3})
	if err != nil {
		t.Fatalf("FromFloat64s failed: %v", err)
	}

	got := a.AsFloat64()
	for i := range data {
		if got[i] != data[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestFromNumbersConversions(t *testing.T) {
	flat := []float64{0, 1, 2, 255}

	i64, err := FromNumbers(flat, Shape{4}, Int64)
	if err != nil {
		t.Fatalf("FromNumbers(Int64) failed: %v", err)
	}
	if got := i64.AsInt64(); got[3] != 255 {
		t.Errorf("int64 element 3 = %d, want 255", got[3])
	}

	u8, err := FromNumbers(flat, Shape{2, 2}, Uint8)
	if err != nil {
		t.Fatalf("FromNumbers(Uint8) failed: %v", err)
	}
	if got := u8.AsUint8(); got[3] != 255 {
		t.Errorf("uint8 element 3 = %d, want 255", got[3])
	}

	b, err := FromNumbers(flat, Shape{4}, Bool)
	if err != nil {
		t.Fatalf("FromNumbers(Bool) failed: %v", err)
	}
	want := []bool{false, true, true, true}
	for i, v := range b.AsBool() {
		if v != want[i] {
			t.Errorf("bool element %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestFromNumbersLengthMismatch(t *testing.T) {
	if _, err := FromNumbers([]float64{1, 2, 3}, Shape{2, 2}, Float64); err == nil {
		t.Fatal("expected error for element count mismatch")
	}
}

func TestEqual(t *testing.T) {
	a, _ := FromFloat64s([]float64{1, 2, 3, 4}, Shape{2, 2})
	b, _ := FromFloat64s([]float64{1, 2, 3, 4}, Shape{2, 2})
	c, _ := FromFloat64s([]float64{1, 2, 3, 4}, Shape{4})
	d, _ := FromFloat64s([]float64{1, 2, 3, 5}, Shape{2, 2})

	if !a.Equal(b) {
		t.Error("equal arrays reported unequal")
	}
	if a.Equal(c) {
		t.Error("different shapes reported equal")
	}
	if a.Equal(d) {
		t.Error("different data reported equal")
	}
	if a.Equal(nil) {
		t.Error("nil reported equal")
	}
}

func TestFlat(t *testing.T) {
	a, _ := FromInt64s([]int64{7, 8, 9}, Shape{3})
	flat := a.Flat()
	if len(flat) != 3 {
		t.Fatalf("Flat length = %d, want 3", len(flat))
	}
	if flat[2] != int64(9) {
		t.Errorf("Flat[2] = %v, want 9", flat[2])
	}
}

func TestShapeOverflowRejected(t *testing.T) {
	// Element count product overflows int.
	if err := (Shape{1 << 32, 1 << 32}).Validate(); err == nil {
		t.Error("expected error for overflowing element count")
	}

	// Element count fits, but the byte size does not: 2^60+256 float64
	// elements. Must fail as an error, not wrap and panic in make.
	const dim = 1152921504606847232
	if _, err := New(Shape{dim}, Float64); err == nil {
		t.Error("expected error for overflowing byte size")
	}
	if _, err := NewFromBytes(Shape{dim}, Float64, nil); err == nil {
		t.Error("expected error for overflowing byte size")
	}
	if _, err := FromNumbers([]float64{}, Shape{dim}, Float64); err == nil {
		t.Error("expected error for overflowing byte size")
	}
}

func TestScalarShape(t *testing.T) {
	a, err := New(Shape{}, Float64)
	if err != nil {
		t.Fatalf("New scalar failed: %v", err)
	}
	if a.NumElements() != 1 {
		t.Errorf("scalar NumElements = %d, want 1", a.NumElements())
	}
}

func TestParseDataType(t *testing.T) {
	dt, ok := ParseDataType("int32")
	if !ok || dt != Int32 {
		t.Errorf("ParseDataType(int32) = %v, %v", dt, ok)
	}
	if _, ok := ParseDataType("complex128"); ok {
		t.Error("ParseDataType accepted complex128")
	}
}
