package dotpath

import (
	"reflect"
	"testing"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		path []any
		want string
	}{
		{nil, ""},
		{[]any{"model"}, "model"},
		{[]any{"model", "layers", 0}, "model.layers.0"},
		{[]any{"a", 12, "b"}, "a.12.b"},
	}
	for _, tt := range tests {
		if got := Join(tt.path); got != tt.want {
			t.Errorf("Join(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	if got := Split(""); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	got := Split("model.layers.0")
	want := []string{"model", "layers", "0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestNested(t *testing.T) {
	flat := map[string]any{
		"a.b": 1,
		"a.c": 2,
		"d":   3,
	}
	got, err := Nested(flat)
	if err != nil {
		t.Fatalf("Nested failed: %v", err)
	}
	want := map[string]any{
		"a": map[string]any{"b": 1, "c": 2},
		"d": 3,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Nested = %v, want %v", got, want)
	}
}

func TestNestedCollision(t *testing.T) {
	if _, err := Nested(map[string]any{"a": 1, "a.b": 2}); err == nil {
		t.Error("expected error for prefix collision")
	}
	if _, err := Nested(map[string]any{"": 1}); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	nested := map[string]any{
		"model": map[string]any{
			"layers": map[string]any{"0": "conv", "1": "relu"},
			"name":   "tiny",
		},
		"epoch": 7,
	}
	flat := Flatten(nested)
	want := map[string]any{
		"model.layers.0": "conv",
		"model.layers.1": "relu",
		"model.name":     "tiny",
		"epoch":          7,
	}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Flatten = %v, want %v", flat, want)
	}

	back, err := Nested(flat)
	if err != nil {
		t.Fatalf("Nested failed: %v", err)
	}
	if !reflect.DeepEqual(back, nested) {
		t.Errorf("round trip = %v, want %v", back, nested)
	}
}
