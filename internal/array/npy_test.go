package array

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func roundTripNPY(t *testing.T, a *Array) *Array {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteNPY(&buf, a); err != nil {
		t.Fatalf("WriteNPY failed: %v", err)
	}
	got, err := ReadNPY(&buf)
	if err != nil {
		t.Fatalf("ReadNPY failed: %v", err)
	}
	return got
}

func TestNPYRoundTripFloat64(t *testing.T) {
	a, _ := FromFloat64s([]float64{1.5, -2, 3.25, 4, 5, 6}, Shape{2, 3})
	got := roundTripNPY(t, a)
	if !got.Equal(a) {
		t.Errorf("round trip mismatch: got %v, want %v", got, a)
	}
}

func TestNPYRoundTripInt64Vector(t *testing.T) {
	a, _ := FromInt64s([]int64{-1, 0, 1 << 40}, Shape{3})
	got := roundTripNPY(t, a)
	if !got.Equal(a) {
		t.Errorf("round trip mismatch: got %v, want %v", got, a)
	}
	if len(got.Shape()) != 1 {
		t.Errorf("shape rank = %d, want 1", len(got.Shape()))
	}
}

func TestNPYRoundTripUint8Cube(t *testing.T) {
	a, err := NewFromBytes(Shape{2, 2, 2}, Uint8, []byte{0, 1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	got := roundTripNPY(t, a)
	if !got.Equal(a) {
		t.Errorf("round trip mismatch: got %v, want %v", got, a)
	}
}

func TestNPYRoundTripScalar(t *testing.T) {
	a, _ := FromFloat64s([]float64{42}, Shape{})
	got := roundTripNPY(t, a)
	if !got.Equal(a) {
		t.Errorf("round trip mismatch: got %v, want %v", got, a)
	}
}

func TestNPYDataAlignment(t *testing.T) {
	a, _ := FromFloat64s([]float64{1, 2}, Shape{2})
	var buf bytes.Buffer
	if err := WriteNPY(&buf, a); err != nil {
		t.Fatalf("WriteNPY failed: %v", err)
	}
	dataStart := buf.Len() - len(a.Data())
	if dataStart%npyAlignment != 0 {
		t.Errorf("data starts at offset %d, not %d-byte aligned", dataStart, npyAlignment)
	}
}

func TestNPYReadVersion2Header(t *testing.T) {
	a, _ := FromFloat64s([]float64{1, 2, 3}, Shape{3})

	header := "{'descr': '<f8', 'fortran_order': False, 'shape': (3,), }\n"
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{2, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(header)))
	buf.WriteString(header)
	buf.Write(a.Data())

	got, err := ReadNPY(&buf)
	if err != nil {
		t.Fatalf("ReadNPY v2 failed: %v", err)
	}
	if !got.Equal(a) {
		t.Errorf("v2 read mismatch: got %v, want %v", got, a)
	}
}

func TestNPYRejectsBadMagic(t *testing.T) {
	_, err := ReadNPY(bytes.NewReader([]byte("NOTNPY\x01\x00")))
	if !errors.Is(err, ErrNPYMagic) {
		t.Errorf("err = %v, want ErrNPYMagic", err)
	}
}

func TestNPYRejectsFortranOrder(t *testing.T) {
	header := "{'descr': '<f8', 'fortran_order': True, 'shape': (2,), }\n"
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(make([]byte, 16))

	_, err := ReadNPY(&buf)
	if !errors.Is(err, ErrNPYFortranOrder) {
		t.Errorf("err = %v, want ErrNPYFortranOrder", err)
	}
}

func npyWithHeader(t *testing.T, header string, data []byte) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(data)
	return bytes.NewReader(buf.Bytes())
}

func TestNPYRejectsOverflowingShape(t *testing.T) {
	// 2^60+256 float64 elements: the byte size wraps past MaxInt.
	header := "{'descr': '<f8', 'fortran_order': False, 'shape': (1152921504606847232,), }\n"
	if _, err := ReadNPY(npyWithHeader(t, header, nil)); err == nil {
		t.Error("expected error for overflowing declared shape")
	}
}

func TestNPYRejectsShapeLargerThanInput(t *testing.T) {
	// A valid size, but far more than the member actually holds. The
	// mismatch must fail before the data buffer is allocated.
	header := "{'descr': '<f8', 'fortran_order': False, 'shape': (1000000,), }\n"
	_, err := ReadNPY(npyWithHeader(t, header, make([]byte, 16)))
	if err == nil {
		t.Fatal("expected error for truncated data")
	}
	if !strings.Contains(err.Error(), "remain") {
		t.Errorf("err = %v, want remaining-bytes mismatch", err)
	}
}

func TestNPYRejectsBigEndianDescr(t *testing.T) {
	header := "{'descr': '>f8', 'fortran_order': False, 'shape': (2,), }\n"
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	_ = binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(make([]byte, 16))

	if _, err := ReadNPY(&buf); err == nil {
		t.Error("expected error for big-endian descr")
	}
}
