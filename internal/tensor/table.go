package tensor

// The operator tables below are the single source of truth for how each
// language-level operator maps onto an elementwise primitive. One generic
// routine per table consumes them (see methods.go); no per-operator dispatch
// code exists outside the tables.

// binarySpec maps one binary operator onto an elementwise mode.
// reversed swaps the operand order (right-hand-side dispatch);
// boolGuard requires both operands to be Bool before the primitive runs.
type binarySpec struct {
	mode      ElemwiseMode
	reversed  bool
	boolGuard bool
}

var binaryTable = map[string]binarySpec{
	"add":      {mode: ModeAdd},
	"sub":      {mode: ModeSub},
	"mul":      {mode: ModeMul},
	"truediv":  {mode: ModeTrueDiv},
	"floordiv": {mode: ModeFloorDiv},
	"mod":      {mode: ModeMod},
	"pow":      {mode: ModePow},
	"lshift":   {mode: ModeShl},
	"rshift":   {mode: ModeShr},

	"radd":      {mode: ModeAdd, reversed: true},
	"rsub":      {mode: ModeSub, reversed: true},
	"rmul":      {mode: ModeMul, reversed: true},
	"rtruediv":  {mode: ModeTrueDiv, reversed: true},
	"rfloordiv": {mode: ModeFloorDiv, reversed: true},
	"rmod":      {mode: ModeMod, reversed: true},
	"rpow":      {mode: ModePow, reversed: true},
	"rlshift":   {mode: ModeShl, reversed: true},
	"rrshift":   {mode: ModeShr, reversed: true},

	"and": {mode: ModeAnd, boolGuard: true},
	"or":  {mode: ModeOr, boolGuard: true},
	"xor": {mode: ModeXor, boolGuard: true},

	"rand": {mode: ModeAnd, reversed: true, boolGuard: true},
	"ror":  {mode: ModeOr, reversed: true, boolGuard: true},
	"rxor": {mode: ModeXor, reversed: true, boolGuard: true},
}

// unarySpec maps one unary operator onto an elementwise mode.
type unarySpec struct {
	mode      ElemwiseMode
	boolGuard bool
}

var unaryTable = map[string]unarySpec{
	"neg":    {mode: ModeNegate},
	"abs":    {mode: ModeAbs},
	"round":  {mode: ModeRound},
	"floor":  {mode: ModeFloor},
	"ceil":   {mode: ModeCeil},
	"invert": {mode: ModeNot, boolGuard: true},
}

// compareSpec maps one comparison operator onto a comparison primitive.
// Only LT, LEQ and EQ exist as primitives; GT and GE swap the operands.
type compareSpec struct {
	mode    ElemwiseMode
	swapped bool
}

var compareTable = map[string]compareSpec{
	"lt": {mode: ModeLt},
	"le": {mode: ModeLeq},
	"gt": {mode: ModeLt, swapped: true},
	"ge": {mode: ModeLeq, swapped: true},
	"eq": {mode: ModeEq},
}
