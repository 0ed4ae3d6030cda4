package cpu

import (
	"github.com/pkg/errors"

	"github.com/loom-ml/loom/internal/tensor"
)

// matmul performs 2D matrix multiplication honoring the transpose flags.
// Only the default compute mode and format are supported.
func (c *Backend) matmul(op tensor.MatMul, args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantArgs("matmul", 2, args); err != nil {
		return nil, err
	}
	if op.ComputeMode != tensor.ComputeModeDefault || op.Format != tensor.FormatDefault {
		return nil, errors.Wrapf(tensor.ErrNotImplemented,
			"matmul: compute mode %q format %q", op.ComputeMode, op.Format)
	}

	a, b := args[0], args[1]
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, errors.Errorf("matmul: only 2D tensors, got %v @ %v", a.Shape(), b.Shape())
	}
	if a.DType() != b.DType() {
		return nil, errors.Errorf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType())
	}

	m, k := a.Shape()[0], a.Shape()[1]
	if op.TransposeA {
		m, k = k, m
	}
	k2, n := b.Shape()[0], b.Shape()[1]
	if op.TransposeB {
		k2, n = n, k2
	}
	if k != k2 {
		return nil, errors.Errorf("matmul: inner dimensions do not match: %v @ %v", a.Shape(), b.Shape())
	}

	// Float32 is the common case; everything else goes through float64.
	if a.DType() == tensor.Float32 && !op.TransposeA && !op.TransposeB {
		out, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, c.device)
		if err != nil {
			return nil, err
		}
		av := a.AsFloat32()
		bv := b.AsFloat32()
		dst := out.AsFloat32()
		for i := 0; i < m; i++ {
			for kk := 0; kk < k; kk++ {
				aik := av[i*k+kk]
				if aik == 0 {
					continue
				}
				row := bv[kk*n : (kk+1)*n]
				dstRow := dst[i*n : (i+1)*n]
				for j, v := range row {
					dstRow[j] += aik * v
				}
			}
		}
		return out, nil
	}

	av, err := loadFloats(a)
	if err != nil {
		return nil, errors.Wrap(err, "matmul")
	}
	bv, err := loadFloats(b)
	if err != nil {
		return nil, errors.Wrap(err, "matmul")
	}

	at := func(i, kk int) float64 {
		if op.TransposeA {
			i, kk = kk, i
		}
		return av[i*a.Shape()[1]+kk]
	}
	bt := func(kk, j int) float64 {
		if op.TransposeB {
			kk, j = j, kk
		}
		return bv[kk*b.Shape()[1]+j]
	}

	out, err := tensor.NewRaw(tensor.Shape{m, n}, a.DType(), c.device)
	if err != nil {
		return nil, err
	}
	dst := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			sum := 0.0
			for kk := 0; kk < k; kk++ {
				sum += at(i, kk) * bt(kk, j)
			}
			dst[i*n+j] = sum
		}
	}
	storeFloats(out, dst)
	return out, nil
}
