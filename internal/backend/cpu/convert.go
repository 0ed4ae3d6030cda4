package cpu

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/loom-ml/loom/internal/tensor"
)

// Element load/store helpers. Kernels that have no dtype-specific fast path
// go through the widened float64 or int64 pathway below; exact integer
// semantics (shifts, floor division) always use the int64 pathway.

func loadFloats(r *tensor.RawTensor) ([]float64, error) {
	out := make([]float64, r.NumElements())
	switch r.DType() {
	case tensor.Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case tensor.Float64:
		copy(out, r.AsFloat64())
	case tensor.Float16:
		for i, v := range r.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	case tensor.Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	case tensor.Int64:
		for i, v := range r.AsInt64() {
			out[i] = float64(v)
		}
	case tensor.Uint8:
		for i, v := range r.AsUint8() {
			out[i] = float64(v)
		}
	case tensor.Bool:
		for i, v := range r.AsBool() {
			if v {
				out[i] = 1
			}
		}
	default:
		return nil, errors.Errorf("unsupported dtype %s", r.DType())
	}
	return out, nil
}

func loadInts(r *tensor.RawTensor) ([]int64, error) {
	out := make([]int64, r.NumElements())
	switch r.DType() {
	case tensor.Int32:
		for i, v := range r.AsInt32() {
			out[i] = int64(v)
		}
	case tensor.Int64:
		copy(out, r.AsInt64())
	case tensor.Uint8:
		for i, v := range r.AsUint8() {
			out[i] = int64(v)
		}
	default:
		return nil, errors.Errorf("dtype %s is not integral", r.DType())
	}
	return out, nil
}

func storeFloats(r *tensor.RawTensor, values []float64) {
	switch r.DType() {
	case tensor.Float32:
		dst := r.AsFloat32()
		for i, v := range values {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(r.AsFloat64(), values)
	case tensor.Float16:
		dst := r.AsFloat16()
		for i, v := range values {
			dst[i] = float16.Fromfloat32(float32(v))
		}
	case tensor.Int32:
		dst := r.AsInt32()
		for i, v := range values {
			dst[i] = int32(v)
		}
	case tensor.Int64:
		dst := r.AsInt64()
		for i, v := range values {
			dst[i] = int64(v)
		}
	case tensor.Uint8:
		dst := r.AsUint8()
		for i, v := range values {
			dst[i] = uint8(v)
		}
	case tensor.Bool:
		dst := r.AsBool()
		for i, v := range values {
			dst[i] = v != 0
		}
	default:
		panic("store: unsupported dtype " + r.DType().String())
	}
}

func storeInts(r *tensor.RawTensor, values []int64) {
	switch r.DType() {
	case tensor.Int32:
		dst := r.AsInt32()
		for i, v := range values {
			dst[i] = int32(v)
		}
	case tensor.Int64:
		copy(r.AsInt64(), values)
	case tensor.Uint8:
		dst := r.AsUint8()
		for i, v := range values {
			dst[i] = uint8(v)
		}
	default:
		panic("store: dtype " + r.DType().String() + " is not integral")
	}
}

// cast converts a tensor to the target dtype.
func (c *Backend) cast(op tensor.Cast, args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if err := wantArgs("cast", 1, args); err != nil {
		return nil, err
	}
	x := args[0]
	out, err := tensor.NewRaw(x.Shape(), op.To, c.device)
	if err != nil {
		return nil, errors.Wrap(err, "cast")
	}
	// Integer-to-integer casts stay on the exact int64 pathway.
	if x.DType().IsInt() && op.To.IsInt() {
		values, err := loadInts(x)
		if err != nil {
			return nil, errors.Wrap(err, "cast")
		}
		storeInts(out, values)
		return out, nil
	}
	values, err := loadFloats(x)
	if err != nil {
		return nil, errors.Wrap(err, "cast")
	}
	storeFloats(out, values)
	return out, nil
}
