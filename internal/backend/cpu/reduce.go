package cpu

import (
	"math"

	"github.com/pkg/errors"

	"github.com/loom-ml/loom/internal/tensor"
)

// reduce collapses one axis of the input with the given mode. The reduced
// dimension is removed from the output shape; reducing a rank-1 tensor
// yields a rank-0 scalar.
func (c *Backend) reduce(op tensor.Reduce, args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantArgs("reduce", 1, args); err != nil {
		return nil, err
	}
	x := args[0]
	shape := x.Shape()
	ndim := len(shape)

	axis := op.Axis
	if axis < 0 {
		axis = ndim + axis
	}
	if axis < 0 || axis >= ndim {
		return nil, errors.Errorf("reduce %s: axis %d out of range for rank-%d tensor", op.Mode, op.Axis, ndim)
	}

	if op.Mode == tensor.ReduceMean && !x.DType().IsFloat() {
		return nil, errors.Errorf("reduce MEAN: unsupported dtype %s", x.DType())
	}

	outShape := make(tensor.Shape, 0, ndim-1)
	for i, d := range shape {
		if i != axis {
			outShape = append(outShape, d)
		}
	}

	strides := shape.ComputeStrides()
	out, err := tensor.NewRaw(outShape, x.DType(), c.device)
	if err != nil {
		return nil, err
	}

	// Integer reductions stay on the exact int64 pathway.
	if x.DType().IsInt() {
		src, err := loadInts(x)
		if err != nil {
			return nil, errors.Wrapf(err, "reduce %s", op.Mode)
		}
		n := outShape.NumElements()
		dst := make([]int64, n)
		for i := 0; i < n; i++ {
			offset := reduceBase(i, shape, strides, axis)
			acc := src[offset]
			for k := 1; k < shape[axis]; k++ {
				v := src[offset+k*strides[axis]]
				switch op.Mode {
				case tensor.ReduceSum:
					acc += v
				case tensor.ReduceProduct:
					acc *= v
				case tensor.ReduceMin:
					if v < acc {
						acc = v
					}
				case tensor.ReduceMax:
					if v > acc {
						acc = v
					}
				default:
					return nil, errors.Wrapf(tensor.ErrNotImplemented, "reduce %s", op.Mode)
				}
			}
			dst[i] = acc
		}
		storeInts(out, dst)
		return out, nil
	}

	src, err := loadFloats(x)
	if err != nil {
		return nil, errors.Wrapf(err, "reduce %s", op.Mode)
	}
	axisLen := shape[axis]
	n := outShape.NumElements()
	dst := make([]float64, n)

	for i := 0; i < n; i++ {
		offset := reduceBase(i, shape, strides, axis)
		acc := src[offset]
		for k := 1; k < axisLen; k++ {
			v := src[offset+k*strides[axis]]
			switch op.Mode {
			case tensor.ReduceSum, tensor.ReduceMean:
				acc += v
			case tensor.ReduceProduct:
				acc *= v
			case tensor.ReduceMin:
				acc = math.Min(acc, v)
			case tensor.ReduceMax:
				acc = math.Max(acc, v)
			default:
				return nil, errors.Wrapf(tensor.ErrNotImplemented, "reduce %s", op.Mode)
			}
		}
		if op.Mode == tensor.ReduceMean {
			acc /= float64(axisLen)
		}
		dst[i] = acc
	}
	storeFloats(out, dst)
	return out, nil
}

// reduceBase maps a flat output index to the source offset of the first
// element along the reduced axis.
func reduceBase(i int, shape tensor.Shape, strides []int, axis int) int {
	rem := i
	offset := 0
	for ax := len(shape) - 1; ax >= 0; ax-- {
		if ax == axis {
			continue
		}
		idx := rem % shape[ax]
		rem /= shape[ax]
		offset += idx * strides[ax]
	}
	return offset
}
