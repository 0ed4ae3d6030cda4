package cpu

import (
	"github.com/pkg/errors"

	"github.com/loom-ml/loom/internal/tensor"
)

// reshape changes the tensor's shape without reordering elements. The target
// shape arrives as a rank-1 int32 tensor; op.UnspecAxis names the dimension
// to infer from the element count, if any.
func (c *Backend) reshape(op tensor.Reshape, args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantArgs("reshape", 2, args); err != nil {
		return nil, err
	}
	target, err := tensor.ResolveReshapeTarget(args[0], args[1], op.UnspecAxis)
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(target, args[0].DType(), c.device)
	if err != nil {
		return nil, err
	}
	copy(out.Data(), args[0].Data()[:args[0].ByteSize()])
	return out, nil
}

// broadcastTo materializes the input expanded to the target shape.
func (c *Backend) broadcastTo(args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantArgs("broadcast", 2, args); err != nil {
		return nil, err
	}
	x := args[0]
	dims := args[1].AsInt32()
	target := make(tensor.Shape, len(dims))
	for i, d := range dims {
		target[i] = int(d)
	}

	merged, _, err := tensor.BroadcastShapes(x.Shape(), target)
	if err != nil {
		return nil, errors.Wrap(err, "broadcast")
	}
	if !merged.Equal(target) {
		return nil, errors.Errorf("broadcast: cannot expand %v to %v", x.Shape(), target)
	}

	out, err := tensor.NewRaw(target, x.DType(), c.device)
	if err != nil {
		return nil, err
	}
	elem := x.DType().Size()
	src := x.Data()
	dst := out.Data()
	n := target.NumElements()
	for i := 0; i < n; i++ {
		o := broadcastOffset(i, target, x.Shape())
		copy(dst[i*elem:(i+1)*elem], src[o*elem:(o+1)*elem])
	}
	return out, nil
}

// transpose permutes the tensor's axes; empty axes reverses them all.
func (c *Backend) transpose(op tensor.Transpose, args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantArgs("transpose", 1, args); err != nil {
		return nil, err
	}
	x := args[0]
	shape := x.Shape()
	ndim := len(shape)

	axes := op.Axes
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		return nil, errors.Errorf("transpose: %d axes for rank-%d tensor", len(axes), ndim)
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			return nil, errors.Errorf("transpose: axis %d out of range for rank-%d tensor", ax, ndim)
		}
		if seen[ax] {
			return nil, errors.Errorf("transpose: duplicate axis %d", ax)
		}
		seen[ax] = true
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}

	out, err := tensor.NewRaw(outShape, x.DType(), c.device)
	if err != nil {
		return nil, err
	}

	elem := x.DType().Size()
	srcStrides := shape.ComputeStrides()
	src := x.Data()
	dst := out.Data()
	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		rem := i
		offset := 0
		for axis := ndim - 1; axis >= 0; axis-- {
			idx := rem % outShape[axis]
			rem /= outShape[axis]
			offset += idx * srcStrides[axes[axis]]
		}
		copy(dst[i*elem:(i+1)*elem], src[offset*elem:(offset+1)*elem])
	}
	return out, nil
}
