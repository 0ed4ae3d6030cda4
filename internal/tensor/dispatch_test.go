package tensor

import (
	"errors"
	"testing"
)

func TestValidateReshapeTarget(t *testing.T) {
	tests := []struct {
		shape  []int
		unspec int
	}{
		{[]int{2, 3}, NoUnspecAxis},
		{[]int{-1}, 0},
		{[]int{2, -1}, 1},
		{[]int{-1, 4, 2}, 0},
	}

	for _, tt := range tests {
		unspec, err := validateReshapeTarget(tt.shape)
		if err != nil {
			t.Errorf("validateReshapeTarget(%v): %v", tt.shape, err)
			continue
		}
		if unspec != tt.unspec {
			t.Errorf("validateReshapeTarget(%v) = %d, want %d", tt.shape, unspec, tt.unspec)
		}
	}
}

func TestValidateReshapeTargetErrors(t *testing.T) {
	var ve *ValidationError

	_, err := validateReshapeTarget([]int{2, -3})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = validateReshapeTarget([]int{-1, -1})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err.Error() != "multiple -1 in shape: 0 & 1" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestResolveReshapeTarget(t *testing.T) {
	x, err := NewRaw(Shape{2, 6}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}

	shapeT, err := asTensor1D([]int{3, 4}, CPU)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ResolveReshapeTarget(x, shapeT, NoUnspecAxis)
	if err != nil {
		t.Fatal(err)
	}
	assertShape(t, Shape{3, 4}, got, "exact reshape")

	inferT, err := asTensor1D([]int{3, -1}, CPU)
	if err != nil {
		t.Fatal(err)
	}
	got, err = ResolveReshapeTarget(x, inferT, 1)
	if err != nil {
		t.Fatal(err)
	}
	assertShape(t, Shape{3, 4}, got, "inferred reshape")
}

func TestResolveReshapeTargetErrors(t *testing.T) {
	x, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}

	badT, err := asTensor1D([]int{4}, CPU)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveReshapeTarget(x, badT, NoUnspecAxis); err == nil {
		t.Error("expected error for mismatched element count")
	}

	// 6 elements are not divisible by the known factor 4.
	inferT, err := asTensor1D([]int{4, -1}, CPU)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveReshapeTarget(x, inferT, 1); err == nil {
		t.Error("expected error for non-divisible inference")
	}
}

func TestCastRawSameDTypeIsIdentity(t *testing.T) {
	b := NewMockBackend()
	x, err := NewRaw(Shape{3}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}

	out, err := castRaw(b, x, Float32)
	if err != nil {
		t.Fatal(err)
	}
	if out != x {
		t.Error("same-dtype cast must return the input")
	}
	assertOps(t, b)
}

func TestElemwiseSingleResultEnforced(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2}, Shape{2}, b)

	xo, err := AsOperand(x)
	if err != nil {
		t.Fatal(err)
	}
	out, err := elemwise(b, ModeAdd, xo, xo)
	if err != nil {
		t.Fatal(err)
	}
	if out == nil {
		t.Fatal("expected a result")
	}
	assertFloats(t, []float64{2, 4}, tensorFloats(t, Wrap(out, b)), "elemwise add")
}

func TestReduceRawNoAxis(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2, 3, 4}, Shape{2, 2}, b)

	out, err := reduceRaw(b, x.Raw(), ReduceSum, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertShape(t, Shape{}, out.Shape(), "full reduction")
	assertOps(t, b, "reshape", "reduce.SUM")
}

func TestReduceRawWithAxis(t *testing.T) {
	b := NewMockBackend()
	x := fromFloat32(t, []float32{1, 2, 3, 4}, Shape{2, 2}, b)

	axis := 1
	out, err := reduceRaw(b, x.Raw(), ReduceMax, &axis)
	if err != nil {
		t.Fatal(err)
	}
	assertShape(t, Shape{2}, out.Shape(), "axis reduction")
	assertOps(t, b, "reduce.MAX")
}
