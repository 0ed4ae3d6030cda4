package tensor

import (
	"github.com/pkg/errors"
)

// Free dispatch functions. Each one normalizes its operands, invokes exactly
// one primitive operation through Backend.Apply (or a short fixed sequence),
// and enforces the single-output postcondition for elementwise ops.

// elemwise applies one elementwise primitive to the given operands.
// Elementwise ops are defined to return exactly one tensor; a backend
// violating that is a hard error here, not silently ignored.
func elemwise(b Backend, mode ElemwiseMode, operands ...Operand) (*RawTensor, error) {
	args, err := convertInputs(b, operands...)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}
	results, err := b.Apply(Elemwise{Mode: mode}, args...)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("%s: expected a single result, got %d", mode, len(results))
	}
	return results[0], nil
}

// matmul applies the matrix multiplication primitive with both transpose
// flags false and default compute precision and format.
func matmul(b Backend, x, y Operand) (*RawTensor, error) {
	args, err := convertInputs(b, x, y)
	if err != nil {
		return nil, errors.Wrap(err, "matmul")
	}
	op := MatMul{
		TransposeA:  false,
		TransposeB:  false,
		ComputeMode: ComputeModeDefault,
		Format:      FormatDefault,
	}
	results, err := b.Apply(op, args...)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("matmul: expected a single result, got %d", len(results))
	}
	return results[0], nil
}

// transposeRaw permutes the tensor's axes. Empty axes means reverse all axes.
func transposeRaw(b Backend, x *RawTensor, axes []int) (*RawTensor, error) {
	results, err := b.Apply(Transpose{Axes: axes}, x)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("transpose: expected a single result, got %d", len(results))
	}
	return results[0], nil
}

// broadcastRaw broadcasts the tensor to the target shape. The shape travels
// as a rank-1 int32 tensor on the input's device.
func broadcastRaw(b Backend, x *RawTensor, shape []int) (*RawTensor, error) {
	shapeT, err := asTensor1D(shape, x.Device())
	if err != nil {
		return nil, errors.Wrap(err, "broadcast")
	}
	results, err := b.Apply(Broadcast{}, x, shapeT)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("broadcast: expected a single result, got %d", len(results))
	}
	return results[0], nil
}

// validateReshapeTarget checks the reshape target shape: every entry must be
// >= -1 and at most one entry may be the -1 inference marker. Returns the
// index of the inferred axis, or NoUnspecAxis.
func validateReshapeTarget(shape []int) (int, error) {
	unspec := NoUnspecAxis
	for i, s := range shape {
		if s < 0 {
			if s != -1 {
				return 0, errShapeEntry(i, s)
			}
			if unspec != NoUnspecAxis {
				return 0, errMultipleUnspec(unspec, i)
			}
			unspec = i
		}
	}
	return unspec, nil
}

// reshapeRaw reshapes the tensor to the target shape, inferring at most one
// dimension. The validated shape is embedded as a constant rank-1 int32
// tensor on the input's device and handed to a single reshape primitive.
func reshapeRaw(b Backend, x *RawTensor, shape []int) (*RawTensor, error) {
	unspec, err := validateReshapeTarget(shape)
	if err != nil {
		return nil, err
	}
	shapeT, err := asTensor1D(shape, x.Device())
	if err != nil {
		return nil, errors.Wrap(err, "reshape")
	}
	results, err := b.Apply(Reshape{UnspecAxis: unspec}, x, shapeT)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("reshape: expected a single result, got %d", len(results))
	}
	return results[0], nil
}

// reduceRaw reduces the tensor with the given mode. With no axis the tensor
// is first flattened to rank 1 and reduced over axis 0; this
// flatten-then-reduce policy is the defined semantics, not an optimization.
func reduceRaw(b Backend, x *RawTensor, mode ReduceMode, axis *int) (*RawTensor, error) {
	input := x
	ax := 0
	if axis == nil {
		flat, err := reshapeRaw(b, x, []int{-1})
		if err != nil {
			return nil, err
		}
		input = flat
	} else {
		ax = *axis
	}
	results, err := b.Apply(Reduce{Mode: mode, Axis: ax}, input)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("reduce %s: expected a single result, got %d", mode, len(results))
	}
	return results[0], nil
}

// castRaw converts the tensor to the target dtype.
func castRaw(b Backend, x *RawTensor, to DataType) (*RawTensor, error) {
	if x.DType() == to {
		return x, nil
	}
	results, err := b.Apply(Cast{To: to}, x)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.Errorf("cast: expected a single result, got %d", len(results))
	}
	return results[0], nil
}
