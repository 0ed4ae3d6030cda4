package tensor

import (
	"testing"
)

func TestResolveIndices(t *testing.T) {
	shape := Shape{2, 3, 4}
	strides := shape.ComputeStrides()

	tests := []struct {
		indices []int
		offset  int
		rest    Shape
	}{
		{nil, 0, Shape{2, 3, 4}},
		{[]int{1}, 12, Shape{3, 4}},
		{[]int{1, 2}, 20, Shape{4}},
		{[]int{1, 2, 3}, 23, Shape{}},
		{[]int{-1}, 12, Shape{3, 4}},
		{[]int{0, -1}, 8, Shape{4}},
	}

	for _, tt := range tests {
		offset, rest, err := resolveIndices(shape, strides, tt.indices)
		if err != nil {
			t.Errorf("resolveIndices(%v): %v", tt.indices, err)
			continue
		}
		if offset != tt.offset {
			t.Errorf("resolveIndices(%v): offset %d, want %d", tt.indices, offset, tt.offset)
		}
		assertShape(t, tt.rest, rest, "remaining shape")
	}
}

func TestResolveIndicesErrors(t *testing.T) {
	shape := Shape{2, 3}
	strides := shape.ComputeStrides()

	if _, _, err := resolveIndices(shape, strides, []int{2}); err == nil {
		t.Error("expected out of bounds error")
	}
	if _, _, err := resolveIndices(shape, strides, []int{-3}); err == nil {
		t.Error("expected negative out of bounds error")
	}
	if _, _, err := resolveIndices(shape, strides, []int{0, 0, 0}); err == nil {
		t.Error("expected too many indices error")
	}
}

func TestGetitemRawCopies(t *testing.T) {
	x, err := NewRaw(Shape{2, 2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	copy(x.AsFloat32(), []float32{1, 2, 3, 4})

	row, err := getitemRaw(x, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	assertShape(t, Shape{2}, row.Shape(), "row")
	if row.AsFloat32()[0] != 3 || row.AsFloat32()[1] != 4 {
		t.Errorf("row = %v, want [3 4]", row.AsFloat32())
	}

	// The result owns its memory.
	row.AsFloat32()[0] = 99
	if x.AsFloat32()[2] != 3 {
		t.Error("getitem must copy, not alias")
	}
}

func TestSetitemRawLeavesInputUntouched(t *testing.T) {
	x, err := NewRaw(Shape{2, 2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	copy(x.AsFloat32(), []float32{1, 2, 3, 4})

	value, err := NewRaw(Shape{2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	copy(value.AsFloat32(), []float32{8, 9})

	out, err := setitemRaw(x, []int{0}, value)
	if err != nil {
		t.Fatal(err)
	}
	got := out.AsFloat32()
	if got[0] != 8 || got[1] != 9 || got[2] != 3 || got[3] != 4 {
		t.Errorf("result = %v, want [8 9 3 4]", got)
	}

	orig := x.AsFloat32()
	if orig[0] != 1 || orig[1] != 2 {
		t.Error("setitem must not mutate the input")
	}
}

func TestSetitemRawReplicatesScalar(t *testing.T) {
	x, err := NewRaw(Shape{2, 3}, Int32, CPU)
	if err != nil {
		t.Fatal(err)
	}

	value, err := NewRaw(Shape{}, Int32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	value.AsInt32()[0] = 7

	out, err := setitemRaw(x, []int{1}, value)
	if err != nil {
		t.Fatal(err)
	}
	got := out.AsInt32()
	for i := 3; i < 6; i++ {
		if got[i] != 7 {
			t.Fatalf("element %d = %d, want 7", i, got[i])
		}
	}
	for i := 0; i < 3; i++ {
		if got[i] != 0 {
			t.Fatalf("element %d = %d, want 0", i, got[i])
		}
	}
}

func TestSetitemRawDTypeMismatch(t *testing.T) {
	x, err := NewRaw(Shape{2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	value, err := NewRaw(Shape{2}, Int32, CPU)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := setitemRaw(x, nil, value); err == nil {
		t.Error("expected dtype mismatch error")
	}
}

func TestSetitemRawSizeMismatch(t *testing.T) {
	x, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}
	value, err := NewRaw(Shape{2}, Float32, CPU)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := setitemRaw(x, []int{0}, value); err == nil {
		t.Error("expected size mismatch error")
	}
}
