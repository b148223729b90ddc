// Package array provides the dense numeric array type stored in ZANJ archives.
package array

import "fmt"

// DataType represents runtime type information for array elements.
type DataType int

// Supported element types.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Uint8, Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseDataType converts a dtype string (the form stored in archive
// documents, matching NumPy dtype names) to a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "int32":
		return Int32, true
	case "int64":
		return Int64, true
	case "uint8":
		return Uint8, true
	case "bool":
		return Bool, true
	default:
		return 0, false
	}
}

// descr returns the NumPy array-interface descr string for the data type.
// All multi-byte types are little-endian.
func (dt DataType) descr() string {
	switch dt {
	case Float32:
		return "<f4"
	case Float64:
		return "<f8"
	case Int32:
		return "<i4"
	case Int64:
		return "<i8"
	case Uint8:
		return "|u1"
	case Bool:
		return "|b1"
	default:
		panic("unknown data type")
	}
}

// parseDescr converts a NumPy descr string to a DataType. Big-endian
// descrs are rejected since archive payloads are always little-endian.
func parseDescr(s string) (DataType, error) {
	switch s {
	case "<f4":
		return Float32, nil
	case "<f8":
		return Float64, nil
	case "<i4":
		return Int32, nil
	case "<i8":
		return Int64, nil
	case "|u1", "<u1":
		return Uint8, nil
	case "|b1", "<b1":
		return Bool, nil
	default:
		return 0, fmt.Errorf("unsupported dtype descr %q", s)
	}
}
