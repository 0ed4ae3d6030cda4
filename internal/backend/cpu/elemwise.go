package cpu

import (
	"math"

	"github.com/pkg/errors"

	"github.com/loom-ml/loom/internal/tensor"
)

// broadcastOffset maps a flat output index to the corresponding flat input
// index under NumPy broadcasting rules.
func broadcastOffset(flat int, outShape, inShape tensor.Shape) int {
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
		if inAxis < 0 || inShape[inAxis] == 1 {
			continue
		}
		offset += idx * inStrides[inAxis]
	}
	return offset
}

func (c *Backend) elemwise(mode tensor.ElemwiseMode, args []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if mode.Arity() == 1 {
		if err := wantArgs(mode.String(), 1, args); err != nil {
			return nil, err
		}
		return c.unary(mode, args[0])
	}
	if err := wantArgs(mode.String(), 2, args); err != nil {
		return nil, err
	}
	return c.binary(mode, args[0], args[1])
}

// Unary kernels.

func (c *Backend) unary(mode tensor.ElemwiseMode, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	if mode == tensor.ModeNot {
		if x.DType() != tensor.Bool {
			return nil, errors.Errorf("NOT: requires a bool tensor, got %s", x.DType())
		}
		out, err := tensor.NewRaw(x.Shape(), tensor.Bool, c.device)
		if err != nil {
			return nil, err
		}
		src := x.AsBool()
		dst := out.AsBool()
		for i, v := range src {
			dst[i] = !v
		}
		return out, nil
	}

	if x.DType() == tensor.Bool {
		return nil, errors.Errorf("%s: unsupported dtype bool", mode)
	}

	// ROUND/FLOOR/CEIL are the identity on integer tensors.
	if x.DType().IsInt() {
		switch mode {
		case tensor.ModeRound, tensor.ModeFloor, tensor.ModeCeil:
			return x.CloneDeep(), nil
		}
		src, err := loadInts(x)
		if err != nil {
			return nil, errors.Wrap(err, mode.String())
		}
		out, err := tensor.NewRaw(x.Shape(), x.DType(), c.device)
		if err != nil {
			return nil, err
		}
		dst := make([]int64, len(src))
		for i, v := range src {
			switch mode {
			case tensor.ModeNegate:
				dst[i] = -v
			case tensor.ModeAbs:
				if v < 0 {
					dst[i] = -v
				} else {
					dst[i] = v
				}
			default:
				return nil, errors.Errorf("%s: unsupported dtype %s", mode, x.DType())
			}
		}
		storeInts(out, dst)
		return out, nil
	}

	src, err := loadFloats(x)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}
	out, err := tensor.NewRaw(x.Shape(), x.DType(), c.device)
	if err != nil {
		return nil, err
	}
	dst := make([]float64, len(src))
	for i, v := range src {
		switch mode {
		case tensor.ModeNegate:
			dst[i] = -v
		case tensor.ModeAbs:
			dst[i] = math.Abs(v)
		case tensor.ModeRound:
			dst[i] = math.RoundToEven(v)
		case tensor.ModeFloor:
			dst[i] = math.Floor(v)
		case tensor.ModeCeil:
			dst[i] = math.Ceil(v)
		default:
			return nil, errors.Errorf("%s: not a unary mode", mode)
		}
	}
	storeFloats(out, dst)
	return out, nil
}

// Binary kernels.

func (c *Backend) binary(mode tensor.ElemwiseMode, a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.DType() != b.DType() {
		return nil, errors.Errorf("%s: dtype mismatch: %s vs %s", mode, a.DType(), b.DType())
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}

	switch {
	case mode == tensor.ModeAnd || mode == tensor.ModeOr || mode == tensor.ModeXor:
		return c.binaryBool(mode, a, b, outShape)
	case mode.IsComparison():
		return c.binaryCompare(mode, a, b, outShape)
	case mode == tensor.ModeShl || mode == tensor.ModeShr:
		if !a.DType().IsInt() {
			return nil, errors.Errorf("%s: unsupported dtype %s (integer shifts only)", mode, a.DType())
		}
		return c.binaryInt(mode, a, b, outShape)
	case a.DType().IsInt():
		if mode == tensor.ModeTrueDiv {
			// True division always yields a floating result, like NumPy.
			return c.binaryFloat(mode, a, b, outShape, tensor.Float32)
		}
		return c.binaryInt(mode, a, b, outShape)
	case a.DType().IsFloat():
		if !needsBroadcast && a.DType() == tensor.Float32 {
			return c.binaryFloat32Fast(mode, a, b)
		}
		return c.binaryFloat(mode, a, b, outShape, a.DType())
	default:
		return nil, errors.Errorf("%s: unsupported dtype %s", mode, a.DType())
	}
}

// binaryFloat32Fast is the vectorizable same-shape float32 path.
func (c *Backend) binaryFloat32Fast(mode tensor.ElemwiseMode, a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	out, err := tensor.NewRaw(a.Shape(), tensor.Float32, c.device)
	if err != nil {
		return nil, err
	}
	av := a.AsFloat32()
	bv := b.AsFloat32()
	dst := out.AsFloat32()

	switch mode {
	case tensor.ModeAdd:
		for i := range av {
			dst[i] = av[i] + bv[i]
		}
	case tensor.ModeSub:
		for i := range av {
			dst[i] = av[i] - bv[i]
		}
	case tensor.ModeMul:
		for i := range av {
			dst[i] = av[i] * bv[i]
		}
	case tensor.ModeTrueDiv:
		for i := range av {
			dst[i] = av[i] / bv[i]
		}
	default:
		return c.binaryFloat(mode, a, b, a.Shape(), tensor.Float32)
	}
	return out, nil
}

func (c *Backend) binaryFloat(mode tensor.ElemwiseMode, a, b *tensor.RawTensor, outShape tensor.Shape, outDType tensor.DataType) (*tensor.RawTensor, error) {
	var op func(x, y float64) float64
	switch mode {
	case tensor.ModeAdd:
		op = func(x, y float64) float64 { return x + y }
	case tensor.ModeSub:
		op = func(x, y float64) float64 { return x - y }
	case tensor.ModeMul:
		op = func(x, y float64) float64 { return x * y }
	case tensor.ModeTrueDiv:
		op = func(x, y float64) float64 { return x / y }
	case tensor.ModeFloorDiv:
		op = func(x, y float64) float64 { return math.Floor(x / y) }
	case tensor.ModeMod:
		// Python-style modulo: the result takes the divisor's sign.
		op = func(x, y float64) float64 { return x - y*math.Floor(x/y) }
	case tensor.ModePow:
		op = math.Pow
	default:
		return nil, errors.Errorf("%s: unsupported dtype %s", mode, a.DType())
	}

	av, err := loadFloats(a)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}
	bv, err := loadFloats(b)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}

	out, err := tensor.NewRaw(outShape, outDType, c.device)
	if err != nil {
		return nil, err
	}
	n := outShape.NumElements()
	dst := make([]float64, n)
	for i := 0; i < n; i++ {
		x := av[broadcastOffset(i, outShape, a.Shape())]
		y := bv[broadcastOffset(i, outShape, b.Shape())]
		dst[i] = op(x, y)
	}
	storeFloats(out, dst)
	return out, nil
}

func (c *Backend) binaryInt(mode tensor.ElemwiseMode, a, b *tensor.RawTensor, outShape tensor.Shape) (*tensor.RawTensor, error) {
	av, err := loadInts(a)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}
	bv, err := loadInts(b)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}

	switch mode {
	case tensor.ModeFloorDiv, tensor.ModeMod:
		for _, v := range bv {
			if v == 0 {
				return nil, errors.Errorf("%s: integer division or modulo by zero", mode)
			}
		}
	case tensor.ModePow:
		for _, v := range bv {
			if v < 0 {
				return nil, errors.Errorf("POW: integers to negative integer powers are not allowed")
			}
		}
	case tensor.ModeShl, tensor.ModeShr:
		for _, v := range bv {
			if v < 0 {
				return nil, errors.Errorf("%s: negative shift count", mode)
			}
		}
	}

	var op func(x, y int64) int64
	switch mode {
	case tensor.ModeAdd:
		op = func(x, y int64) int64 { return x + y }
	case tensor.ModeSub:
		op = func(x, y int64) int64 { return x - y }
	case tensor.ModeMul:
		op = func(x, y int64) int64 { return x * y }
	case tensor.ModeFloorDiv:
		op = floorDivInt
	case tensor.ModeMod:
		op = modInt
	case tensor.ModePow:
		op = powInt
	case tensor.ModeShl:
		op = func(x, y int64) int64 { return x << uint64(y) }
	case tensor.ModeShr:
		op = func(x, y int64) int64 { return x >> uint64(y) }
	default:
		return nil, errors.Errorf("%s: unsupported dtype %s", mode, a.DType())
	}

	out, err := tensor.NewRaw(outShape, a.DType(), c.device)
	if err != nil {
		return nil, err
	}
	n := outShape.NumElements()
	dst := make([]int64, n)
	for i := 0; i < n; i++ {
		x := av[broadcastOffset(i, outShape, a.Shape())]
		y := bv[broadcastOffset(i, outShape, b.Shape())]
		dst[i] = op(x, y)
	}
	storeInts(out, dst)
	return out, nil
}

func (c *Backend) binaryCompare(mode tensor.ElemwiseMode, a, b *tensor.RawTensor, outShape tensor.Shape) (*tensor.RawTensor, error) {
	av, err := loadFloats(a)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}
	bv, err := loadFloats(b)
	if err != nil {
		return nil, errors.Wrap(err, mode.String())
	}

	out, err := tensor.NewRaw(outShape, tensor.Bool, c.device)
	if err != nil {
		return nil, err
	}
	dst := out.AsBool()
	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		x := av[broadcastOffset(i, outShape, a.Shape())]
		y := bv[broadcastOffset(i, outShape, b.Shape())]
		switch mode {
		case tensor.ModeLt:
			dst[i] = x < y
		case tensor.ModeLeq:
			dst[i] = x <= y
		case tensor.ModeEq:
			dst[i] = x == y
		}
	}
	return out, nil
}

func (c *Backend) binaryBool(mode tensor.ElemwiseMode, a, b *tensor.RawTensor, outShape tensor.Shape) (*tensor.RawTensor, error) {
	if a.DType() != tensor.Bool {
		return nil, errors.Errorf("%s: requires bool tensors, got %s", mode, a.DType())
	}

	out, err := tensor.NewRaw(outShape, tensor.Bool, c.device)
	if err != nil {
		return nil, err
	}
	av := a.AsBool()
	bv := b.AsBool()
	dst := out.AsBool()
	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		x := av[broadcastOffset(i, outShape, a.Shape())]
		y := bv[broadcastOffset(i, outShape, b.Shape())]
		switch mode {
		case tensor.ModeAnd:
			dst[i] = x && y
		case tensor.ModeOr:
			dst[i] = x || y
		case tensor.ModeXor:
			dst[i] = x != y
		}
	}
	return out, nil
}

// floorDivInt implements floor division (rounding toward -inf).
func floorDivInt(x, y int64) int64 {
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q
}

// modInt implements Python-style modulo: the result takes the divisor's sign.
func modInt(x, y int64) int64 {
	r := x % y
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

func powInt(x, y int64) int64 {
	result := int64(1)
	for ; y > 0; y-- {
		result *= x
	}
	return result
}
