package tensor

import "fmt"

// Op is an immutable descriptor of one primitive tensor operation. Descriptors
// are plain value structs constructed fresh per call; they carry the typed
// parameters of the operation (mode, axis, transpose flags) and nothing else.
type Op interface {
	// OpName identifies the operation for error messages and logging.
	OpName() string
}

// ElemwiseMode names a primitive operation applied independently per element.
type ElemwiseMode int

// Elementwise modes.
const (
	ModeAdd ElemwiseMode = iota
	ModeSub
	ModeMul
	ModeTrueDiv
	ModeFloorDiv
	ModeMod
	ModePow
	ModeShl
	ModeShr
	ModeAnd
	ModeOr
	ModeXor
	ModeNot
	ModeNegate
	ModeAbs
	ModeRound
	ModeFloor
	ModeCeil
	ModeLt
	ModeLeq
	ModeEq
)

var elemwiseModeNames = map[ElemwiseMode]string{
	ModeAdd:      "ADD",
	ModeSub:      "SUB",
	ModeMul:      "MUL",
	ModeTrueDiv:  "TRUE_DIV",
	ModeFloorDiv: "FLOOR_DIV",
	ModeMod:      "MOD",
	ModePow:      "POW",
	ModeShl:      "SHL",
	ModeShr:      "SHR",
	ModeAnd:      "AND",
	ModeOr:       "OR",
	ModeXor:      "XOR",
	ModeNot:      "NOT",
	ModeNegate:   "NEGATE",
	ModeAbs:      "ABS",
	ModeRound:    "ROUND",
	ModeFloor:    "FLOOR",
	ModeCeil:     "CEIL",
	ModeLt:       "LT",
	ModeLeq:      "LEQ",
	ModeEq:       "EQ",
}

// String returns the mode's canonical name.
func (m ElemwiseMode) String() string {
	if name, ok := elemwiseModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ElemwiseMode(%d)", int(m))
}

// Arity returns the number of operands the mode consumes.
func (m ElemwiseMode) Arity() int {
	switch m {
	case ModeNot, ModeNegate, ModeAbs, ModeRound, ModeFloor, ModeCeil:
		return 1
	default:
		return 2
	}
}

// IsComparison reports whether the mode produces a boolean result.
func (m ElemwiseMode) IsComparison() bool {
	return m == ModeLt || m == ModeLeq || m == ModeEq
}

// Elemwise describes one elementwise primitive operation.
type Elemwise struct {
	Mode ElemwiseMode
}

// OpName implements Op.
func (e Elemwise) OpName() string { return "elemwise." + e.Mode.String() }

// Default matmul parameterization.
const (
	ComputeModeDefault = "DEFAULT"
	FormatDefault      = "DEFAULT"
)

// MatMul describes a matrix multiplication primitive.
type MatMul struct {
	TransposeA  bool
	TransposeB  bool
	ComputeMode string
	Format      string
}

// OpName implements Op.
func (MatMul) OpName() string { return "matmul" }

// ReduceMode names a reduction primitive.
type ReduceMode int

// Reduction modes.
const (
	ReduceSum ReduceMode = iota
	ReduceProduct
	ReduceMin
	ReduceMax
	ReduceMean
)

// String returns the mode's canonical name.
func (m ReduceMode) String() string {
	switch m {
	case ReduceSum:
		return "SUM"
	case ReduceProduct:
		return "PRODUCT"
	case ReduceMin:
		return "MIN"
	case ReduceMax:
		return "MAX"
	case ReduceMean:
		return "MEAN"
	default:
		return fmt.Sprintf("ReduceMode(%d)", int(m))
	}
}

// Reduce describes a reduction over a single axis.
type Reduce struct {
	Mode ReduceMode
	Axis int
}

// OpName implements Op.
func (r Reduce) OpName() string { return "reduce." + r.Mode.String() }

// NoUnspecAxis marks a reshape with no inferred dimension.
const NoUnspecAxis = -1

// Reshape describes a reshape primitive. The target shape travels as a rank-1
// int32 tensor argument; UnspecAxis names the inferred dimension, if any.
type Reshape struct {
	UnspecAxis int
}

// OpName implements Op.
func (Reshape) OpName() string { return "reshape" }

// ResolveReshapeTarget turns a rank-1 int32 shape tensor plus the
// inferred-axis parameter into a concrete shape for x's element count.
// Shared by backends implementing the reshape primitive.
func ResolveReshapeTarget(x, shapeT *RawTensor, unspecAxis int) (Shape, error) {
	dims := shapeT.AsInt32()
	target := make(Shape, len(dims))
	known := 1
	for i, d := range dims {
		target[i] = int(d)
		if i != unspecAxis {
			known *= int(d)
		}
	}
	total := x.NumElements()
	if unspecAxis != NoUnspecAxis {
		if known == 0 || total%known != 0 {
			return nil, fmt.Errorf("cannot infer shape %v from %d elements", target, total)
		}
		target[unspecAxis] = total / known
	} else if known != total {
		return nil, fmt.Errorf("cannot reshape %d elements into shape %v", total, target)
	}
	return target, nil
}

// Broadcast describes a broadcast-to-shape primitive. The target shape
// travels as a rank-1 int32 tensor argument.
type Broadcast struct{}

// OpName implements Op.
func (Broadcast) OpName() string { return "broadcast" }

// Transpose describes an axis permutation. Empty Axes means reverse all axes.
type Transpose struct {
	Axes []int
}

// OpName implements Op.
func (Transpose) OpName() string { return "transpose" }

// Cast describes a dtype conversion primitive.
type Cast struct {
	To DataType
}

// OpName implements Op.
func (c Cast) OpName() string { return "cast." + c.To.String() }

// Backend executes primitive operations described by Op values. Its internals
// (kernels, device memory, scheduling) are opaque to the dispatch layer.
//
// Implementations:
//   - backend/cpu: pure Go kernels
//   - backend/webgpu: GPU compute with CPU fallback
type Backend interface {
	// Apply executes one primitive operation, returning one or more result
	// tensors. Ops the backend cannot execute return ErrNotImplemented.
	Apply(op Op, args ...*RawTensor) ([]*RawTensor, error)

	// Name returns the backend name.
	Name() string

	// Device returns the compute device new tensors are placed on.
	Device() Device
}
