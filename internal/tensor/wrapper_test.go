package tensor

import (
	"errors"
	"strings"
	"testing"
)

func TestFromValueNil(t *testing.T) {
	b := NewMockBackend()
	_, err := FromValue(nil, b)
	if err == nil {
		t.Fatal("expected error for nil data")
	}
	if !strings.Contains(err.Error(), "cannot init a tensor with nil data") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestFromValueSharesTensor(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2, 3}, Shape{3}, b)

	y, err := FromValue(x, b)
	if err != nil {
		t.Fatal(err)
	}
	if y == x {
		t.Error("expected a fresh wrapper")
	}
	if y.Raw() != x.Raw() {
		t.Error("expected the underlying reference to be shared")
	}
}

func TestFromValueAdoptsRaw(t *testing.T) {
	b := NewMockBackend()
	raw, err := NewRaw(Shape{2, 2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	x, err := FromValue(raw, b)
	if err != nil {
		t.Fatal(err)
	}
	if x.Raw() != raw {
		t.Error("expected the raw tensor to be adopted directly")
	}
}

func TestFromValueScalar(t *testing.T) {
	b := NewMockBackend()
	tests := []struct {
		value any
		dtype DataType
	}{
		{float32(1.5), Float32},
		{float64(2.5), Float64},
		{int(7), Int32},
		{int64(7), Int64},
		{uint8(7), Uint8},
		{true, Bool},
	}

	for _, tt := range tests {
		x, err := FromValue(tt.value, b)
		if err != nil {
			t.Fatalf("FromValue(%v): %v", tt.value, err)
		}
		if x.DType() != tt.dtype {
			t.Errorf("FromValue(%v): dtype %s, want %s", tt.value, x.DType(), tt.dtype)
		}
		assertShape(t, Shape{}, x.Shape(), "scalar shape")
		if x.Size() != 1 {
			t.Errorf("FromValue(%v): size %d, want 1", tt.value, x.Size())
		}
	}
}

func TestFromValueLargeIntExact(t *testing.T) {
	b := NewMockBackend()

	// Magnitudes above 2^53 are not representable in float64; they must
	// survive construction bit-exactly.
	big := int64(1)<<62 + 1
	x, err := FromValue(big, b)
	if err != nil {
		t.Fatal(err)
	}
	v, err := x.Item()
	if err != nil {
		t.Fatal(err)
	}
	if v != big {
		t.Errorf("Item() = %v, want %v", v, big)
	}

	odd := int64(1)<<53 + 1
	y, err := FromValue([]int64{odd}, b)
	if err != nil {
		t.Fatal(err)
	}
	s, err := y.ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	vals, ok := s.([]int64)
	if !ok {
		t.Fatalf("ToSlice() = %T, want []int64", s)
	}
	if vals[0] != odd {
		t.Errorf("round-trip = %d, want %d", vals[0], odd)
	}
}

func TestFromValueSlice(t *testing.T) {
	b := NewMockBackend()
	x, err := FromValue([]int32{1, 2, 3, 4}, b)
	if err != nil {
		t.Fatal(err)
	}
	if x.DType() != Int32 {
		t.Errorf("dtype %s, want int32", x.DType())
	}
	assertShape(t, Shape{4}, x.Shape(), "slice shape")
}

func TestFromValueUnsupported(t *testing.T) {
	b := NewMockBackend()
	if _, err := FromValue(struct{}{}, b); err == nil {
		t.Error("expected error for unsupported input")
	}
}

func TestRebindTensor(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2}, Shape{2}, b)
	y := fromFloat32(t, []float32{3, 4, 5}, Shape{3}, b)

	if err := x.Rebind(y); err != nil {
		t.Fatal(err)
	}
	if x.Raw() != y.Raw() {
		t.Error("expected x to adopt y's reference")
	}
	assertShape(t, Shape{3}, x.Shape(), "rebound shape")
}

func TestRebindNil(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1}, Shape{1}, b)

	err := x.Rebind(nil)
	var ite *IdentityTypeError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IdentityTypeError, got %v", err)
	}
}

func TestRebindUnsupported(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1}, Shape{1}, b)

	err := x.Rebind(struct{}{})
	var ite *IdentityTypeError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IdentityTypeError, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot rebind tensor from") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestRebindDataKeepsDType(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2, 3}, Shape{3}, b)

	// Raw int data is re-materialized with the wrapper's current dtype.
	if err := x.Rebind([]int32{7, 8, 9}); err != nil {
		t.Fatal(err)
	}
	if x.DType() != Float32 {
		t.Errorf("dtype %s after rebind, want float32", x.DType())
	}
	assertFloats(t, []float64{7, 8, 9}, tensorFloats(t, x), "rebound values")
}

func TestWrapNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil raw tensor")
		}
	}()
	Wrap(nil, NewMockBackend())
}

func TestTensorString(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, b)
	got := x.String()
	want := "Tensor[float32][2 3] on CPU"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
