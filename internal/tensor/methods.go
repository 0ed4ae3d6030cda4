package tensor

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Operator method surface. Every method translates into exactly one primitive
// invocation (or a short fixed sequence) through the free dispatch functions;
// which primitive, and with which coercions, is decided by the static tables
// in table.go.

func tensorOperand(t *Tensor) Operand {
	return Operand{kind: operandTensor, t: t}
}

// isBool reports whether the operand is boolean-typed (or a bare Go bool).
func (o Operand) isBool() bool {
	if dt, ok := o.dtypeHint(); ok {
		return dt == Bool
	}
	switch o.val.(type) {
	case bool, []bool:
		return true
	}
	return false
}

// binary dispatches one binary operator through the static table.
func (t *Tensor) binary(name string, other any) (*Tensor, error) {
	spec, ok := binaryTable[name]
	if !ok {
		panic("unknown binary operator: " + name)
	}
	op, err := AsOperand(other)
	if err != nil {
		return nil, err
	}
	if spec.boolGuard && (t.DType() != Bool || !op.isBool()) {
		return nil, &TypeMismatchError{Mode: spec.mode.String(), Binary: true}
	}
	a, b := tensorOperand(t), op
	if spec.reversed {
		a, b = b, a
	}
	raw, err := elemwise(t.backend, spec.mode, a, b)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// unary dispatches one unary operator through the static table.
func (t *Tensor) unary(name string) (*Tensor, error) {
	spec, ok := unaryTable[name]
	if !ok {
		panic("unknown unary operator: " + name)
	}
	if spec.boolGuard && t.DType() != Bool {
		return nil, &TypeMismatchError{Mode: spec.mode.String()}
	}
	raw, err := elemwise(t.backend, spec.mode, tensorOperand(t))
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// compare dispatches one comparison operator. The result is always Bool; a
// backend returning another dtype is coerced with a cast.
func (t *Tensor) compare(name string, other any) (*Tensor, error) {
	spec, ok := compareTable[name]
	if !ok {
		panic("unknown comparison operator: " + name)
	}
	op, err := AsOperand(other)
	if err != nil {
		return nil, err
	}
	a, b := tensorOperand(t), op
	if spec.swapped {
		a, b = b, a
	}
	raw, err := elemwise(t.backend, spec.mode, a, b)
	if err != nil {
		return nil, err
	}
	raw, err = castRaw(t.backend, raw, Bool)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// inplace computes the non-mutating operator, then atomically replaces the
// wrapper's reference with the result. A structurally unsupported base op
// surfaces as ErrNotImplemented with no observable mutation.
func (t *Tensor) inplace(name string, other any) error {
	result, err := t.binary(name, other)
	if err != nil {
		return err
	}
	t.slot.Store(result.Raw())
	return nil
}

// Binary arithmetic.

// Add returns t + other element-wise.
func (t *Tensor) Add(other any) (*Tensor, error) { return t.binary("add", other) }

// Sub returns t - other element-wise.
func (t *Tensor) Sub(other any) (*Tensor, error) { return t.binary("sub", other) }

// Mul returns t * other element-wise.
func (t *Tensor) Mul(other any) (*Tensor, error) { return t.binary("mul", other) }

// TrueDiv returns t / other element-wise.
func (t *Tensor) TrueDiv(other any) (*Tensor, error) { return t.binary("truediv", other) }

// FloorDiv returns t // other element-wise (division rounded toward -inf).
func (t *Tensor) FloorDiv(other any) (*Tensor, error) { return t.binary("floordiv", other) }

// Mod returns t mod other element-wise.
func (t *Tensor) Mod(other any) (*Tensor, error) { return t.binary("mod", other) }

// Pow returns t ** other element-wise.
func (t *Tensor) Pow(other any) (*Tensor, error) { return t.binary("pow", other) }

// Lshift returns t << other element-wise.
func (t *Tensor) Lshift(other any) (*Tensor, error) { return t.binary("lshift", other) }

// Rshift returns t >> other element-wise.
func (t *Tensor) Rshift(other any) (*Tensor, error) { return t.binary("rshift", other) }

// Reversed binary arithmetic (operand order swapped, for right-hand-side
// dispatch when the left operand is a bare scalar or slice).

// RAdd returns other + t element-wise.
func (t *Tensor) RAdd(other any) (*Tensor, error) { return t.binary("radd", other) }

// RSub returns other - t element-wise.
func (t *Tensor) RSub(other any) (*Tensor, error) { return t.binary("rsub", other) }

// RMul returns other * t element-wise.
func (t *Tensor) RMul(other any) (*Tensor, error) { return t.binary("rmul", other) }

// RTrueDiv returns other / t element-wise.
func (t *Tensor) RTrueDiv(other any) (*Tensor, error) { return t.binary("rtruediv", other) }

// RFloorDiv returns other // t element-wise.
func (t *Tensor) RFloorDiv(other any) (*Tensor, error) { return t.binary("rfloordiv", other) }

// RMod returns other mod t element-wise.
func (t *Tensor) RMod(other any) (*Tensor, error) { return t.binary("rmod", other) }

// RPow returns other ** t element-wise.
func (t *Tensor) RPow(other any) (*Tensor, error) { return t.binary("rpow", other) }

// RLshift returns other << t element-wise.
func (t *Tensor) RLshift(other any) (*Tensor, error) { return t.binary("rlshift", other) }

// RRshift returns other >> t element-wise.
func (t *Tensor) RRshift(other any) (*Tensor, error) { return t.binary("rrshift", other) }

// Logical operators. Both operands must be Bool; the guard runs before the
// primitive op is invoked.

// And returns t AND other element-wise.
func (t *Tensor) And(other any) (*Tensor, error) { return t.binary("and", other) }

// Or returns t OR other element-wise.
func (t *Tensor) Or(other any) (*Tensor, error) { return t.binary("or", other) }

// Xor returns t XOR other element-wise.
func (t *Tensor) Xor(other any) (*Tensor, error) { return t.binary("xor", other) }

// RAnd returns other AND t element-wise.
func (t *Tensor) RAnd(other any) (*Tensor, error) { return t.binary("rand", other) }

// ROr returns other OR t element-wise.
func (t *Tensor) ROr(other any) (*Tensor, error) { return t.binary("ror", other) }

// RXor returns other XOR t element-wise.
func (t *Tensor) RXor(other any) (*Tensor, error) { return t.binary("rxor", other) }

// Unary arithmetic.

// Neg returns -t element-wise.
func (t *Tensor) Neg() (*Tensor, error) { return t.unary("neg") }

// Abs returns |t| element-wise.
func (t *Tensor) Abs() (*Tensor, error) { return t.unary("abs") }

// Round rounds each element to the nearest integer.
func (t *Tensor) Round() (*Tensor, error) { return t.unary("round") }

// Floor rounds each element toward -inf.
func (t *Tensor) Floor() (*Tensor, error) { return t.unary("floor") }

// Ceil rounds each element toward +inf.
func (t *Tensor) Ceil() (*Tensor, error) { return t.unary("ceil") }

// Invert returns NOT t element-wise. Requires a Bool tensor.
func (t *Tensor) Invert() (*Tensor, error) { return t.unary("invert") }

// Pos returns the tensor unchanged in value. The returned wrapper is fresh
// but shares the underlying reference.
func (t *Tensor) Pos() *Tensor { return Wrap(t.Raw(), t.backend) }

// Trunc is not supported.
func (t *Tensor) Trunc() (*Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "trunc")
}

// Comparisons. Results are always Bool tensors.

// Lt returns t < other element-wise.
func (t *Tensor) Lt(other any) (*Tensor, error) { return t.compare("lt", other) }

// Le returns t <= other element-wise.
func (t *Tensor) Le(other any) (*Tensor, error) { return t.compare("le", other) }

// Gt returns t > other element-wise.
func (t *Tensor) Gt(other any) (*Tensor, error) { return t.compare("gt", other) }

// Ge returns t >= other element-wise.
func (t *Tensor) Ge(other any) (*Tensor, error) { return t.compare("ge", other) }

// Eq returns t == other element-wise.
func (t *Tensor) Eq(other any) (*Tensor, error) { return t.compare("eq", other) }

// Ne returns t != other element-wise, defined as NOT(EQ(t, other)).
// The two-step definition is deliberate: errors surface from EQ first, and
// no dedicated not-equal primitive is required of backends.
func (t *Tensor) Ne(other any) (*Tensor, error) {
	eq, err := t.Eq(other)
	if err != nil {
		return nil, err
	}
	raw, err := elemwise(t.backend, ModeNot, tensorOperand(eq))
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// Matrix multiplication.

// MatMul returns t @ other.
func (t *Tensor) MatMul(other any) (*Tensor, error) {
	op, err := AsOperand(other)
	if err != nil {
		return nil, err
	}
	raw, err := matmul(t.backend, tensorOperand(t), op)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// RMatMul returns other @ t.
func (t *Tensor) RMatMul(other any) (*Tensor, error) {
	op, err := AsOperand(other)
	if err != nil {
		return nil, err
	}
	raw, err := matmul(t.backend, op, tensorOperand(t))
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// In-place operators. Each computes the non-mutating op and then rebinds the
// wrapper; identity is preserved, the underlying reference is replaced.

// AddInplace computes t = t + other.
func (t *Tensor) AddInplace(other any) error { return t.inplace("add", other) }

// SubInplace computes t = t - other.
func (t *Tensor) SubInplace(other any) error { return t.inplace("sub", other) }

// MulInplace computes t = t * other.
func (t *Tensor) MulInplace(other any) error { return t.inplace("mul", other) }

// TrueDivInplace computes t = t / other.
func (t *Tensor) TrueDivInplace(other any) error { return t.inplace("truediv", other) }

// FloorDivInplace computes t = t // other.
func (t *Tensor) FloorDivInplace(other any) error { return t.inplace("floordiv", other) }

// ModInplace computes t = t mod other.
func (t *Tensor) ModInplace(other any) error { return t.inplace("mod", other) }

// PowInplace computes t = t ** other.
func (t *Tensor) PowInplace(other any) error { return t.inplace("pow", other) }

// LshiftInplace computes t = t << other.
func (t *Tensor) LshiftInplace(other any) error { return t.inplace("lshift", other) }

// RshiftInplace computes t = t >> other.
func (t *Tensor) RshiftInplace(other any) error { return t.inplace("rshift", other) }

// AndInplace computes t = t AND other.
func (t *Tensor) AndInplace(other any) error { return t.inplace("and", other) }

// OrInplace computes t = t OR other.
func (t *Tensor) OrInplace(other any) error { return t.inplace("or", other) }

// XorInplace computes t = t XOR other.
func (t *Tensor) XorInplace(other any) error { return t.inplace("xor", other) }

// MatMulInplace computes t = t @ other.
func (t *Tensor) MatMulInplace(other any) error {
	result, err := t.MatMul(other)
	if err != nil {
		return err
	}
	t.slot.Store(result.Raw())
	return nil
}

// Scalar conversions. Valid only when the tensor holds exactly one element.

// Item returns the tensor's single element as a Go value.
func (t *Tensor) Item() (any, error) {
	raw := t.Raw()
	if raw.NumElements() != 1 {
		return nil, &ScalarRequiredError{Size: raw.NumElements()}
	}
	switch raw.DType() {
	case Float32:
		return raw.AsFloat32()[0], nil
	case Float64:
		return raw.AsFloat64()[0], nil
	case Float16:
		return raw.AsFloat16()[0].Float32(), nil
	case Int32:
		return raw.AsInt32()[0], nil
	case Int64:
		return raw.AsInt64()[0], nil
	case Uint8:
		return raw.AsUint8()[0], nil
	case Bool:
		return raw.AsBool()[0], nil
	default:
		panic("item: unsupported dtype " + raw.DType().String())
	}
}

// Bool converts a single-element tensor to a Go bool (non-zero is true).
func (t *Tensor) Bool() (bool, error) {
	v, err := t.Item()
	if err != nil {
		return false, err
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case float32:
		return x != 0, nil
	case float64:
		return x != 0, nil
	case int32:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case uint8:
		return x != 0, nil
	default:
		return false, errors.Errorf("bool: unsupported element %T", v)
	}
}

// Int converts a single-element tensor to a Go int64, truncating floats.
func (t *Tensor) Int() (int64, error) {
	v, err := t.Item()
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	default:
		return 0, errors.Errorf("int: unsupported element %T", v)
	}
}

// Index converts a single-element tensor to a Go int for use as an index.
func (t *Tensor) Index() (int, error) {
	v, err := t.Int()
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// Float converts a single-element tensor to a Go float64.
func (t *Tensor) Float() (float64, error) {
	v, err := t.Item()
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	default:
		return 0, errors.Errorf("float: unsupported element %T", v)
	}
}

// Complex converts a single-element tensor to a Go complex128.
func (t *Tensor) Complex() (complex128, error) {
	f, err := t.Float()
	if err != nil {
		return 0, err
	}
	return complex(f, 0), nil
}

// Sequence protocol.

// Len returns the extent of the first dimension.
// Rank-0 tensors have no length.
func (t *Tensor) Len() (int, error) {
	shape := t.Shape()
	if len(shape) == 0 {
		return 0, &RankError{}
	}
	return shape[0], nil
}

// Rows returns a lazy, restartable iterator over index 0..Len()-1 via
// repeated indexed access. Each call yields a fresh sequence.
func (t *Tensor) Rows() (iter.Seq2[int, *Tensor], error) {
	n, err := t.Len()
	if err != nil {
		return nil, err
	}
	return func(yield func(int, *Tensor) bool) {
		for i := 0; i < n; i++ {
			row, err := t.GetItem(i)
			if err != nil {
				panic(fmt.Sprintf("rows: index %d: %v", i, err))
			}
			if !yield(i, row) {
				return
			}
		}
	}, nil
}

// GetItem selects a subtensor by leading integer indices.
func (t *Tensor) GetItem(indices ...int) (*Tensor, error) {
	raw, err := getitemRaw(t.Raw(), indices)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// SetItem writes value into the subtensor selected by the leading integer
// indices and rebinds the wrapper to the updated tensor. A nil index list
// denotes whole-object replace: the wrapper is rebound to value directly.
// In both cases the replacement is computed fully before the rebind.
func (t *Tensor) SetItem(indices []int, value any) error {
	if indices == nil {
		return t.Rebind(value)
	}
	op, err := AsOperand(value)
	if err != nil {
		return err
	}
	val, err := op.resolve(t.DType(), true, t.Device())
	if err != nil {
		return err
	}
	updated, err := setitemRaw(t.Raw(), indices, val)
	if err != nil {
		return err
	}
	t.slot.Store(updated)
	return nil
}

// Contains is not supported.
func (t *Tensor) Contains(any) (bool, error) {
	return false, errors.Wrap(ErrNotImplemented, "contains")
}

// Derived properties.

// NDim returns the tensor's rank.
func (t *Tensor) NDim() int {
	return len(t.Shape())
}

// Size returns the total number of elements (1 for rank-0 tensors).
func (t *Tensor) Size() int {
	return t.Shape().NumElements()
}

// T returns the tensor with all axes reversed.
func (t *Tensor) T() (*Tensor, error) {
	return t.Transpose()
}

// Shape manipulation.

// Reshape returns a tensor with the target shape. At most one entry may be
// -1, meaning "infer this dimension from the element count".
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	raw, err := reshapeRaw(t.backend, t.Raw(), dims)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// ReshapeTensor reshapes using another tensor's elements as the target
// shape, materialized to concrete integers first.
func (t *Tensor) ReshapeTensor(shape *Tensor) (*Tensor, error) {
	dims, err := shape.Ints()
	if err != nil {
		return nil, err
	}
	return t.Reshape(dims...)
}

// Broadcast returns the tensor broadcast to the target shape.
func (t *Tensor) Broadcast(dims ...int) (*Tensor, error) {
	raw, err := broadcastRaw(t.backend, t.Raw(), dims)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// Transpose permutes the tensor's axes. No arguments reverses all axes.
func (t *Tensor) Transpose(axes ...int) (*Tensor, error) {
	raw, err := transposeRaw(t.backend, t.Raw(), axes)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// Flatten returns the tensor reshaped to rank 1.
func (t *Tensor) Flatten() (*Tensor, error) {
	return t.Reshape(-1)
}

// AsType converts the tensor to the given dtype.
func (t *Tensor) AsType(dt DataType) (*Tensor, error) {
	raw, err := castRaw(t.backend, t.Raw(), dt)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// Reductions. With no axis the tensor is flattened to rank 1 and reduced
// over axis 0.

func (t *Tensor) reduce(mode ReduceMode, axis []int) (*Tensor, error) {
	if len(axis) > 1 {
		return nil, errors.Errorf("%s: at most one axis, got %d", mode, len(axis))
	}
	var ax *int
	if len(axis) == 1 {
		ax = &axis[0]
	}
	raw, err := reduceRaw(t.backend, t.Raw(), mode, ax)
	if err != nil {
		return nil, err
	}
	return Wrap(raw, t.backend), nil
}

// Sum reduces with addition.
func (t *Tensor) Sum(axis ...int) (*Tensor, error) { return t.reduce(ReduceSum, axis) }

// Prod reduces with multiplication.
func (t *Tensor) Prod(axis ...int) (*Tensor, error) { return t.reduce(ReduceProduct, axis) }

// Min reduces with minimum.
func (t *Tensor) Min(axis ...int) (*Tensor, error) { return t.reduce(ReduceMin, axis) }

// Max reduces with maximum.
func (t *Tensor) Max(axis ...int) (*Tensor, error) { return t.reduce(ReduceMax, axis) }

// Mean reduces with arithmetic mean.
func (t *Tensor) Mean(axis ...int) (*Tensor, error) { return t.reduce(ReduceMean, axis) }

// Materialization helpers.

// Ints returns the tensor's elements as a []int. Integer dtypes only.
func (t *Tensor) Ints() ([]int, error) {
	raw := t.Raw()
	n := raw.NumElements()
	out := make([]int, n)
	switch raw.DType() {
	case Int32:
		for i, v := range raw.AsInt32() {
			out[i] = int(v)
		}
	case Int64:
		for i, v := range raw.AsInt64() {
			out[i] = int(v)
		}
	case Uint8:
		for i, v := range raw.AsUint8() {
			out[i] = int(v)
		}
	default:
		return nil, errors.Errorf("ints: dtype %s is not integral", raw.DType())
	}
	return out, nil
}

// Floats returns the tensor's elements widened to []float64.
func (t *Tensor) Floats() ([]float64, error) {
	raw := t.Raw()
	out := make([]float64, raw.NumElements())
	switch raw.DType() {
	case Float32:
		for i, v := range raw.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, raw.AsFloat64())
	case Float16:
		for i, v := range raw.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	case Int32:
		for i, v := range raw.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range raw.AsInt64() {
			out[i] = float64(v)
		}
	case Uint8:
		for i, v := range raw.AsUint8() {
			out[i] = float64(v)
		}
	default:
		return nil, errors.Errorf("floats: dtype %s is not numeric", raw.DType())
	}
	return out, nil
}

// ToSlice returns a copy of the tensor's elements as a flat typed slice.
func (t *Tensor) ToSlice() (any, error) {
	raw := t.Raw()
	switch raw.DType() {
	case Float32:
		return append([]float32(nil), raw.AsFloat32()...), nil
	case Float64:
		return append([]float64(nil), raw.AsFloat64()...), nil
	case Float16:
		return append([]float16.Float16(nil), raw.AsFloat16()...), nil
	case Int32:
		return append([]int32(nil), raw.AsInt32()...), nil
	case Int64:
		return append([]int64(nil), raw.AsInt64()...), nil
	case Uint8:
		return append([]uint8(nil), raw.AsUint8()...), nil
	case Bool:
		return append([]bool(nil), raw.AsBool()...), nil
	default:
		return nil, errors.Errorf("toslice: unsupported dtype %s", raw.DType())
	}
}
