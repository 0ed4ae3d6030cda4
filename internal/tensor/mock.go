package tensor

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing the dispatch layer. It executes
// every primitive naively through a float64 pathway and records each applied
// descriptor so tests can assert on the exact operation sequence.
type MockBackend struct {
	// Applied records every descriptor passed to Apply, in order.
	Applied []Op
	// Unsupported maps OpName values to a forced ErrNotImplemented outcome.
	Unsupported map[string]bool
}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Reset clears the recorded operation log.
func (m *MockBackend) Reset() {
	m.Applied = m.Applied[:0]
}

// Apply executes one primitive operation.
func (m *MockBackend) Apply(op Op, args ...*RawTensor) ([]*RawTensor, error) {
	m.Applied = append(m.Applied, op)
	if m.Unsupported[op.OpName()] {
		return nil, errors.Wrap(ErrNotImplemented, op.OpName())
	}

	switch o := op.(type) {
	case Elemwise:
		out, err := m.elemwise(o.Mode, args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	case MatMul:
		out, err := m.matmul(o, args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	case Reduce:
		out, err := m.reduce(o, args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	case Reshape:
		out, err := m.reshape(o, args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	case Broadcast:
		out, err := m.broadcast(args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	case Transpose:
		out, err := m.transpose(o, args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	case Cast:
		out, err := m.cast(o, args)
		if err != nil {
			return nil, err
		}
		return []*RawTensor{out}, nil
	default:
		return nil, errors.Wrapf(ErrNotImplemented, "mock: %s", op.OpName())
	}
}

// rawFloats widens any numeric or boolean raw tensor to []float64.
func rawFloats(r *RawTensor) []float64 {
	out := make([]float64, r.NumElements())
	switch r.DType() {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, r.AsFloat64())
	case Float16:
		for i, v := range r.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	case Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range r.AsInt64() {
			out[i] = float64(v)
		}
	case Uint8:
		for i, v := range r.AsUint8() {
			out[i] = float64(v)
		}
	case Bool:
		for i, v := range r.AsBool() {
			if v {
				out[i] = 1
			}
		}
	default:
		panic("mock: unsupported dtype " + r.DType().String())
	}
	return out
}

// newRawFromFloats materializes float64 values into a raw tensor of the
// given dtype.
func newRawFromFloats(shape Shape, dtype DataType, device Device, values []float64) (*RawTensor, error) {
	out, err := NewRaw(shape, dtype, device)
	if err != nil {
		return nil, err
	}
	if dtype == Bool {
		dst := out.AsBool()
		for i, v := range values {
			dst[i] = v != 0
		}
		return out, nil
	}
	fillFloats(values)(out)
	return out, nil
}

// broadcastOffset maps a flat output index to the corresponding flat input
// index under NumPy broadcasting.
func broadcastOffset(flat int, outShape, inShape Shape) int {
	if len(inShape) == 0 {
		return 0
	}
	inStrides := inShape.ComputeStrides()
	offset := 0
	rem := flat
	for axis := len(outShape) - 1; axis >= 0; axis-- {
		idx := rem % outShape[axis]
		rem /= outShape[axis]
		inAxis := axis - (len(outShape) - len(inShape))
		if inAxis < 0 {
			continue
		}
		if inShape[inAxis] == 1 {
			continue
		}
		offset += idx * inStrides[inAxis]
	}
	return offset
}

func (m *MockBackend) elemwise(mode ElemwiseMode, args []*RawTensor) (*RawTensor, error) {
	if len(args) != mode.Arity() {
		return nil, errors.Errorf("mock: %s expects %d args, got %d", mode, mode.Arity(), len(args))
	}

	outDType := args[0].DType()
	if mode.IsComparison() {
		outDType = Bool
	}

	if mode.Arity() == 1 {
		src := rawFloats(args[0])
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = applyUnary(mode, v)
		}
		return newRawFromFloats(args[0].Shape(), outDType, m.Device(), dst)
	}

	outShape, _, err := BroadcastShapes(args[0].Shape(), args[1].Shape())
	if err != nil {
		return nil, fmt.Errorf("mock %s: %w", mode, err)
	}
	a := rawFloats(args[0])
	b := rawFloats(args[1])
	n := outShape.NumElements()
	dst := make([]float64, n)
	for i := 0; i < n; i++ {
		av := a[broadcastOffset(i, outShape, args[0].Shape())]
		bv := b[broadcastOffset(i, outShape, args[1].Shape())]
		dst[i] = applyBinary(mode, av, bv)
	}
	return newRawFromFloats(outShape, outDType, m.Device(), dst)
}

func applyUnary(mode ElemwiseMode, v float64) float64 {
	switch mode {
	case ModeNegate:
		return -v
	case ModeAbs:
		return math.Abs(v)
	case ModeRound:
		return math.RoundToEven(v)
	case ModeFloor:
		return math.Floor(v)
	case ModeCeil:
		return math.Ceil(v)
	case ModeNot:
		if v == 0 {
			return 1
		}
		return 0
	default:
		panic("mock: not a unary mode: " + mode.String())
	}
}

func applyBinary(mode ElemwiseMode, a, b float64) float64 {
	boolVal := func(cond bool) float64 {
		if cond {
			return 1
		}
		return 0
	}
	switch mode {
	case ModeAdd:
		return a + b
	case ModeSub:
		return a - b
	case ModeMul:
		return a * b
	case ModeTrueDiv:
		return a / b
	case ModeFloorDiv:
		return math.Floor(a / b)
	case ModeMod:
		return a - b*math.Floor(a/b)
	case ModePow:
		return math.Pow(a, b)
	case ModeShl:
		return float64(int64(a) << uint64(b))
	case ModeShr:
		return float64(int64(a) >> uint64(b))
	case ModeAnd:
		return boolVal(a != 0 && b != 0)
	case ModeOr:
		return boolVal(a != 0 || b != 0)
	case ModeXor:
		return boolVal((a != 0) != (b != 0))
	case ModeLt:
		return boolVal(a < b)
	case ModeLeq:
		return boolVal(a <= b)
	case ModeEq:
		return boolVal(a == b)
	default:
		panic("mock: not a binary mode: " + mode.String())
	}
}

func (m *MockBackend) matmul(op MatMul, args []*RawTensor) (*RawTensor, error) {
	if len(args) != 2 {
		return nil, errors.Errorf("mock matmul: expects 2 args, got %d", len(args))
	}
	a, b := args[0], args[1]
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, errors.Errorf("mock matmul: only 2D tensors, got %v @ %v", a.Shape(), b.Shape())
	}
	aM, aK := a.Shape()[0], a.Shape()[1]
	if op.TransposeA {
		aM, aK = aK, aM
	}
	bK, bN := b.Shape()[0], b.Shape()[1]
	if op.TransposeB {
		bK, bN = bN, bK
	}
	if aK != bK {
		return nil, errors.Errorf("mock matmul: inner dimensions do not match: %v @ %v", a.Shape(), b.Shape())
	}

	av := rawFloats(a)
	bv := rawFloats(b)
	at := func(i, k int) float64 {
		if op.TransposeA {
			i, k = k, i
		}
		return av[i*a.Shape()[1]+k]
	}
	bt := func(k, j int) float64 {
		if op.TransposeB {
			k, j = j, k
		}
		return bv[k*b.Shape()[1]+j]
	}

	dst := make([]float64, aM*bN)
	for i := 0; i < aM; i++ {
		for j := 0; j < bN; j++ {
			sum := 0.0
			for k := 0; k < aK; k++ {
				sum += at(i, k) * bt(k, j)
			}
			dst[i*bN+j] = sum
		}
	}
	return newRawFromFloats(Shape{aM, bN}, a.DType(), m.Device(), dst)
}

func (m *MockBackend) reduce(op Reduce, args []*RawTensor) (*RawTensor, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("mock reduce: expects 1 arg, got %d", len(args))
	}
	x := args[0]
	shape := x.Shape()
	if op.Axis < 0 || op.Axis >= len(shape) {
		return nil, errors.Errorf("mock reduce: axis %d out of range for rank-%d tensor", op.Axis, len(shape))
	}

	outShape := make(Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != op.Axis {
			outShape = append(outShape, d)
		}
	}

	src := rawFloats(x)
	strides := shape.ComputeStrides()
	axisLen := shape[op.Axis]
	n := outShape.NumElements()
	dst := make([]float64, n)

	for i := 0; i < n; i++ {
		// Rebuild the source offset of the first element along the axis.
		rem := i
		offset := 0
		for axis := len(shape) - 1; axis >= 0; axis-- {
			if axis == op.Axis {
				continue
			}
			idx := rem % shape[axis]
			rem /= shape[axis]
			offset += idx * strides[axis]
		}

		acc := src[offset]
		for k := 1; k < axisLen; k++ {
			v := src[offset+k*strides[op.Axis]]
			switch op.Mode {
			case ReduceSum, ReduceMean:
				acc += v
			case ReduceProduct:
				acc *= v
			case ReduceMin:
				acc = math.Min(acc, v)
			case ReduceMax:
				acc = math.Max(acc, v)
			}
		}
		if op.Mode == ReduceMean {
			acc /= float64(axisLen)
		}
		dst[i] = acc
	}
	return newRawFromFloats(outShape, x.DType(), m.Device(), dst)
}

func (m *MockBackend) reshape(op Reshape, args []*RawTensor) (*RawTensor, error) {
	if len(args) != 2 {
		return nil, errors.Errorf("mock reshape: expects tensor + shape, got %d args", len(args))
	}
	target, err := ResolveReshapeTarget(args[0], args[1], op.UnspecAxis)
	if err != nil {
		return nil, err
	}
	out := args[0].CloneDeep()
	out.shape = target
	out.stride = target.ComputeStrides()
	return out, nil
}

func (m *MockBackend) broadcast(args []*RawTensor) (*RawTensor, error) {
	if len(args) != 2 {
		return nil, errors.Errorf("mock broadcast: expects tensor + shape, got %d args", len(args))
	}
	x := args[0]
	dims := args[1].AsInt32()
	target := make(Shape, len(dims))
	for i, d := range dims {
		target[i] = int(d)
	}
	if _, _, err := BroadcastShapes(x.Shape(), target); err != nil {
		return nil, err
	}

	src := rawFloats(x)
	n := target.NumElements()
	dst := make([]float64, n)
	for i := 0; i < n; i++ {
		dst[i] = src[broadcastOffset(i, target, x.Shape())]
	}
	return newRawFromFloats(target, x.DType(), m.Device(), dst)
}

func (m *MockBackend) transpose(op Transpose, args []*RawTensor) (*RawTensor, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("mock transpose: expects 1 arg, got %d", len(args))
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
		return nil, errors.Errorf("mock transpose: %d axes for rank-%d tensor", len(axes), ndim)
	}

	outShape := make(Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim {
			return nil, errors.Errorf("mock transpose: axis %d out of range", ax)
		}
		outShape[i] = shape[ax]
	}

	src := rawFloats(x)
	srcStrides := shape.ComputeStrides()
	n := outShape.NumElements()
	dst := make([]float64, n)
	for i := 0; i < n; i++ {
		rem := i
		offset := 0
		for axis := ndim - 1; axis >= 0; axis-- {
			idx := rem % outShape[axis]
			rem /= outShape[axis]
			offset += idx * srcStrides[axes[axis]]
		}
		dst[i] = src[offset]
	}
	return newRawFromFloats(outShape, x.DType(), m.Device(), dst)
}

func (m *MockBackend) cast(op Cast, args []*RawTensor) (*RawTensor, error) {
	if len(args) != 1 {
		return nil, errors.Errorf("mock cast: expects 1 arg, got %d", len(args))
	}
	x := args[0]
	if op.To == Float16 {
		out, err := NewRaw(x.Shape(), Float16, m.Device())
		if err != nil {
			return nil, err
		}
		dst := out.AsFloat16()
		for i, v := range rawFloats(x) {
			dst[i] = float16.Fromfloat32(float32(v))
		}
		return out, nil
	}
	return newRawFromFloats(x.Shape(), op.To, m.Device(), rawFloats(x))
}
