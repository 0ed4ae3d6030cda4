package tensor

import (
	"testing"
)

func TestZeros(t *testing.T) {
	b := NewMockBackend()
	x := Zeros[float32](Shape{2, 3}, b)

	assertShape(t, Shape{2, 3}, x.Shape(), "zeros")
	if x.DType() != Float32 {
		t.Errorf("dtype %s, want float32", x.DType())
	}
	assertFloats(t, make([]float64, 6), tensorFloats(t, x), "zeros")
}

func TestOnes(t *testing.T) {
	b := NewMockBackend()
	x := Ones[int64](Shape{4}, b)

	if x.DType() != Int64 {
		t.Errorf("dtype %s, want int64", x.DType())
	}
	assertFloats(t, []float64{1, 1, 1, 1}, tensorFloats(t, x), "ones")
}

func TestFull(t *testing.T) {
	b := NewMockBackend()
	x := Full[float64](Shape{2, 2}, 3.5, b)

	assertFloats(t, []float64{3.5, 3.5, 3.5, 3.5}, tensorFloats(t, x), "full")
}

func TestArange(t *testing.T) {
	b := NewMockBackend()
	x := Arange[int32](2, 6, b)

	assertShape(t, Shape{4}, x.Shape(), "arange")
	assertFloats(t, []float64{2, 3, 4, 5}, tensorFloats(t, x), "arange")

	f := Arange[float32](0, 3, b)
	assertFloats(t, []float64{0, 1, 2}, tensorFloats(t, f), "float arange")
}

func TestEye(t *testing.T) {
	b := NewMockBackend()
	x := Eye[float32](3, b)

	assertShape(t, Shape{3, 3}, x.Shape(), "eye")
	assertFloats(t, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, tensorFloats(t, x), "eye")
}

func TestFromSliceLengthMismatch(t *testing.T) {
	b := NewMockBackend()
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2}, b); err == nil {
		t.Error("expected error for 3 elements into shape (2,2)")
	}
}

func TestFromSliceScalarShape(t *testing.T) {
	b := NewMockBackend()
	x, err := FromSlice([]float32{42}, Shape{}, b)
	if err != nil {
		t.Fatal(err)
	}
	assertShape(t, Shape{}, x.Shape(), "scalar from slice")
	v, err := x.Float()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("value %v, want 42", v)
	}
}

func TestFromSliceBool(t *testing.T) {
	b := NewMockBackend()
	x, err := FromSlice([]bool{true, false, true}, Shape{3}, b)
	if err != nil {
		t.Fatal(err)
	}
	if x.DType() != Bool {
		t.Errorf("dtype %s, want bool", x.DType())
	}
	assertBools(t, []bool{true, false, true}, x, "bool tensor")
}
