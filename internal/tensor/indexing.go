package tensor

import (
	"github.com/pkg/errors"
)

// Basic indexing collaborators used by the sequence protocol. Indices are
// leading-axis integers; the selected region of a row-major tensor is a
// contiguous block, so both functions reduce to offset arithmetic plus a
// copy. Advanced (fancy) indexing is out of scope.

// resolveIndices validates leading indices against the shape, allowing
// negative indices to count from the end. Returns the flat element offset of
// the selected block and its shape.
func resolveIndices(shape Shape, strides []int, indices []int) (int, Shape, error) {
	if len(indices) > len(shape) {
		return 0, nil, errors.Errorf("too many indices: %d for rank-%d tensor", len(indices), len(shape))
	}
	offset := 0
	for axis, idx := range indices {
		dim := shape[axis]
		if idx < 0 {
			idx += dim
		}
		if idx < 0 || idx >= dim {
			return 0, nil, errors.Errorf("index %d out of bounds for dimension %d (size %d)", indices[axis], axis, dim)
		}
		offset += idx * strides[axis]
	}
	return offset, shape[len(indices):].Clone(), nil
}

// getitemRaw copies the subtensor selected by leading integer indices.
func getitemRaw(x *RawTensor, indices []int) (*RawTensor, error) {
	offset, rest, err := resolveIndices(x.Shape(), x.Strides(), indices)
	if err != nil {
		return nil, err
	}
	out, err := NewRaw(rest, x.DType(), x.Device())
	if err != nil {
		return nil, err
	}
	elem := x.DType().Size()
	count := rest.NumElements()
	copy(out.Data(), x.Data()[offset*elem:(offset+count)*elem])
	return out, nil
}

// setitemRaw returns a copy of x with the selected region replaced by value.
// value must match the region's shape exactly or hold a single element,
// which is then replicated across the region. x itself is never mutated;
// the caller rebinds to the result.
func setitemRaw(x *RawTensor, indices []int, value *RawTensor) (*RawTensor, error) {
	offset, rest, err := resolveIndices(x.Shape(), x.Strides(), indices)
	if err != nil {
		return nil, err
	}
	if value.DType() != x.DType() {
		return nil, errors.Errorf("setitem: value dtype %s does not match tensor dtype %s", value.DType(), x.DType())
	}
	count := rest.NumElements()
	if value.NumElements() != count && value.NumElements() != 1 {
		return nil, errors.Errorf("setitem: cannot assign %d elements to a region of %d", value.NumElements(), count)
	}

	out := x.CloneDeep()
	elem := x.DType().Size()
	dst := out.Data()[offset*elem : (offset+count)*elem]
	src := value.Data()[:value.ByteSize()]
	if value.NumElements() == count {
		copy(dst, src)
	} else {
		for i := 0; i < count; i++ {
			copy(dst[i*elem:(i+1)*elem], src[:elem])
		}
	}
	return out, nil
}
