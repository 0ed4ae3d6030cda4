package tensor

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// operandKind tags the resolved form of a heterogeneous operand.
type operandKind int

const (
	operandTensor operandKind = iota
	operandRaw
	operandScalar
	operandSlice
)

// Operand is the tagged union of everything an operator position accepts:
// a wrapped tensor, a primitive tensor, a Go scalar, or a flat Go slice.
// Resolution happens once at the call boundary; past this point the dispatch
// code never inspects dynamic types again.
type Operand struct {
	kind operandKind
	t    *Tensor
	raw  *RawTensor
	val  any
}

// AsOperand resolves an arbitrary value into an Operand.
// nil is rejected: there is no empty operand.
func AsOperand(v any) (Operand, error) {
	switch x := v.(type) {
	case nil:
		return Operand{}, errors.New("cannot use nil as a tensor operand")
	case *Tensor:
		if x == nil {
			return Operand{}, errors.New("cannot use nil as a tensor operand")
		}
		return Operand{kind: operandTensor, t: x}, nil
	case *RawTensor:
		if x == nil {
			return Operand{}, errors.New("cannot use nil as a tensor operand")
		}
		return Operand{kind: operandRaw, raw: x}, nil
	case bool, int, int32, int64, uint8, float32, float64:
		return Operand{kind: operandScalar, val: x}, nil
	case []float32, []float64, []int32, []int64, []uint8, []bool:
		return Operand{kind: operandSlice, val: x}, nil
	default:
		return Operand{}, errors.Errorf("unsupported operand type %T", v)
	}
}

// dtypeHint returns the operand's dtype when it already carries one.
func (o Operand) dtypeHint() (DataType, bool) {
	switch o.kind {
	case operandTensor:
		return o.t.DType(), true
	case operandRaw:
		return o.raw.DType(), true
	default:
		return 0, false
	}
}

// resolve materializes the operand as a RawTensor on the given device.
// Scalars and slices adopt the hint dtype when it is numeric and compatible.
func (o Operand) resolve(hint DataType, hasHint bool, device Device) (*RawTensor, error) {
	switch o.kind {
	case operandTensor:
		return o.t.Raw(), nil
	case operandRaw:
		return o.raw, nil
	default:
		dtype, n, fill, err := scanValue(o.val)
		if err != nil {
			return nil, err
		}
		if hasHint && dtype != Bool && hint != Bool {
			dtype = hint
		}
		raw, err := NewRaw(Shape{n}, dtype, device)
		if err != nil {
			return nil, err
		}
		if o.kind == operandScalar {
			raw.shape = Shape{}
			raw.stride = []int{}
		}
		fill(raw)
		return raw, nil
	}
}

// convertInputs normalizes heterogeneous operands into uniform RawTensor
// arguments for Backend.Apply. The first operand that already carries a dtype
// provides the hint for materializing bare scalars and slices.
func convertInputs(b Backend, operands ...Operand) ([]*RawTensor, error) {
	var hint DataType
	hasHint := false
	for _, o := range operands {
		if dt, ok := o.dtypeHint(); ok {
			hint = dt
			hasHint = true
			break
		}
	}

	raws := make([]*RawTensor, len(operands))
	for i, o := range operands {
		raw, err := o.resolve(hint, hasHint, b.Device())
		if err != nil {
			return nil, errors.Wrapf(err, "operand %d", i)
		}
		raws[i] = raw
	}
	return raws, nil
}

// scanValue inspects a Go scalar or flat slice and returns its inferred
// dtype, element count, and a fill function writing it into a RawTensor of
// any numeric dtype.
func scanValue(v any) (DataType, int, func(*RawTensor), error) {
	switch x := v.(type) {
	case bool:
		return Bool, 1, func(r *RawTensor) { r.AsBool()[0] = x }, nil
	case int:
		return Int32, 1, fillInts([]int64{int64(x)}), nil
	case int32:
		return Int32, 1, fillInts([]int64{int64(x)}), nil
	case int64:
		return Int64, 1, fillInts([]int64{x}), nil
	case uint8:
		return Uint8, 1, fillInts([]int64{int64(x)}), nil
	case float32:
		return Float32, 1, fillFloats([]float64{float64(x)}), nil
	case float64:
		return Float64, 1, fillFloats([]float64{x}), nil
	case []float32:
		return Float32, len(x), fillFloats(widenFloat32(x)), nil
	case []float64:
		return Float64, len(x), fillFloats(x), nil
	case []int32:
		return Int32, len(x), fillInts(widenInt32(x)), nil
	case []int64:
		return Int64, len(x), fillInts(x), nil
	case []uint8:
		return Uint8, len(x), fillInts(widenUint8(x)), nil
	case []bool:
		return Bool, len(x), func(r *RawTensor) { copy(r.AsBool(), x) }, nil
	default:
		return 0, 0, nil, errors.Errorf("unsupported operand type %T", v)
	}
}

func widenFloat32(xs []float32) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}

func widenInt32(xs []int32) []int64 {
	out := make([]int64, len(xs))
	for i, v := range xs {
		out[i] = int64(v)
	}
	return out
}

func widenUint8(xs []uint8) []int64 {
	out := make([]int64, len(xs))
	for i, v := range xs {
		out[i] = int64(v)
	}
	return out
}

// fillFloats writes float64 values into a RawTensor of any numeric dtype.
func fillFloats(values []float64) func(*RawTensor) {
	return func(r *RawTensor) {
		switch r.DType() {
		case Float32:
			dst := r.AsFloat32()
			for i, v := range values {
				dst[i] = float32(v)
			}
		case Float64:
			copy(r.AsFloat64(), values)
		case Float16:
			dst := r.AsFloat16()
			for i, v := range values {
				dst[i] = float16.Fromfloat32(float32(v))
			}
		case Int32:
			dst := r.AsInt32()
			for i, v := range values {
				dst[i] = int32(v)
			}
		case Int64:
			dst := r.AsInt64()
			for i, v := range values {
				dst[i] = int64(v)
			}
		case Uint8:
			dst := r.AsUint8()
			for i, v := range values {
				dst[i] = uint8(v)
			}
		default:
			panic("fill: unsupported dtype " + r.DType().String())
		}
	}
}

// fillInts writes int64 values into a RawTensor of any numeric dtype.
// Integer targets keep full 64-bit precision; only float targets round.
func fillInts(values []int64) func(*RawTensor) {
	return func(r *RawTensor) {
		switch r.DType() {
		case Int32:
			dst := r.AsInt32()
			for i, v := range values {
				dst[i] = int32(v)
			}
		case Int64:
			copy(r.AsInt64(), values)
		case Uint8:
			dst := r.AsUint8()
			for i, v := range values {
				dst[i] = uint8(v)
			}
		case Float32:
			dst := r.AsFloat32()
			for i, v := range values {
				dst[i] = float32(v)
			}
		case Float64:
			dst := r.AsFloat64()
			for i, v := range values {
				dst[i] = float64(v)
			}
		case Float16:
			dst := r.AsFloat16()
			for i, v := range values {
				dst[i] = float16.Fromfloat32(float32(v))
			}
		default:
			panic("fill: unsupported dtype " + r.DType().String())
		}
	}
}

// asTensor1D materializes a rank-1 int32 tensor holding the given values,
// placed on the given device. Used for shape arguments.
func asTensor1D(values []int, device Device) (*RawTensor, error) {
	if len(values) == 0 {
		return nil, errors.New("empty shape sequence")
	}
	raw, err := NewRaw(Shape{len(values)}, Int32, device)
	if err != nil {
		return nil, err
	}
	dst := raw.AsInt32()
	for i, v := range values {
		dst[i] = int32(v)
	}
	return raw, nil
}
