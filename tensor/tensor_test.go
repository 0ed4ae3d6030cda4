// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"math"
	"testing"

	"github.com/loom-ml/loom/backend/cpu"
	"github.com/loom-ml/loom/tensor"
)

func wantFloats(t *testing.T, expected []float64, x *tensor.Tensor, msg string) {
	t.Helper()
	got, err := x.Floats()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
	if len(got) != len(expected) {
		t.Fatalf("%s: got %d elements, want %d", msg, len(got), len(expected))
	}
	for i := range expected {
		if math.Abs(got[i]-expected[i]) > 1e-5 {
			t.Errorf("%s: element %d: got %v, want %v", msg, i, got[i], expected[i])
		}
	}
}

func TestArithmeticEndToEnd(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatal(err)
	}

	y, err := x.Mul(2)
	if err != nil {
		t.Fatal(err)
	}
	z, err := y.Sub(x)
	if err != nil {
		t.Fatal(err)
	}
	// 2x - x == x
	wantFloats(t, []float64{1, 2, 3, 4, 5, 6}, z, "2x - x")
}

func TestBroadcastingEndToEnd(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatal(err)
	}
	row, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{3}, backend)
	if err != nil {
		t.Fatal(err)
	}

	z, err := x.Add(row)
	if err != nil {
		t.Fatal(err)
	}
	wantFloats(t, []float64{11, 22, 33, 14, 25, 36}, z, "row broadcast")
}

func TestComparisonAndCast(t *testing.T) {
	backend := cpu.New()
	x := tensor.Arange[float32](0, 6, backend)

	mask, err := x.Ge(3)
	if err != nil {
		t.Fatal(err)
	}
	if mask.DType() != tensor.Bool {
		t.Fatalf("mask dtype %s, want bool", mask.DType())
	}

	ints, err := mask.AsType(tensor.Int32)
	if err != nil {
		t.Fatal(err)
	}
	wantFloats(t, []float64{0, 0, 0, 1, 1, 1}, ints, "mask as int")
}

func TestMatMulEndToEnd(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}
	id := tensor.Eye[float32](2, backend)

	z, err := x.MatMul(id)
	if err != nil {
		t.Fatal(err)
	}
	wantFloats(t, []float64{1, 2, 3, 4}, z, "x @ I")
}

func TestInplaceEndToEnd(t *testing.T) {
	backend := cpu.New()
	x := tensor.Ones[float32](tensor.Shape{3}, backend)

	if err := x.AddInplace(4); err != nil {
		t.Fatal(err)
	}
	if err := x.TrueDivInplace(2); err != nil {
		t.Fatal(err)
	}
	wantFloats(t, []float64{2.5, 2.5, 2.5}, x, "(1+4)/2")
}

func TestReductionEndToEnd(t *testing.T) {
	backend := cpu.New()
	x := tensor.Arange[float32](1, 7, backend)

	y, err := x.Reshape(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	total, err := y.Sum()
	if err != nil {
		t.Fatal(err)
	}
	v, err := total.Float()
	if err != nil {
		t.Fatal(err)
	}
	if v != 21 {
		t.Errorf("sum = %v, want 21", v)
	}

	perRow, err := y.Mean(1)
	if err != nil {
		t.Fatal(err)
	}
	wantFloats(t, []float64{2, 5}, perRow, "row means")
}

func TestNotImplementedSurface(t *testing.T) {
	backend := cpu.New()
	x := tensor.Ones[float32](tensor.Shape{2}, backend)

	_, err := x.Trunc()
	if !errors.Is(err, tensor.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}
