package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotImplemented is returned by operations the dispatch layer deliberately
// does not support (Trunc, Contains) and by backends for ops they cannot
// execute. In-place operators propagate it unchanged.
var ErrNotImplemented = errors.New("not implemented")

// ValidationError reports an invalid shape argument, naming the offending
// entry (or entries, for duplicate inference markers).
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func errShapeEntry(index, value int) error {
	return &ValidationError{msg: fmt.Sprintf("expect shape[%d] >= -1, got %d", index, value)}
}

func errMultipleUnspec(first, second int) error {
	return &ValidationError{msg: fmt.Sprintf("multiple -1 in shape: %d & %d", first, second)}
}

// TypeMismatchError reports a logical operator applied to non-boolean
// operands. The check happens before the primitive op is invoked.
type TypeMismatchError struct {
	Mode   string
	Binary bool
}

func (e *TypeMismatchError) Error() string {
	if e.Binary {
		return fmt.Sprintf("%s requires 2 bool tensors", e.Mode)
	}
	return fmt.Sprintf("%s requires a bool tensor", e.Mode)
}

// ScalarRequiredError reports a numeric conversion or Item call on a tensor
// that does not hold exactly one element.
type ScalarRequiredError struct {
	Size int
}

func (e *ScalarRequiredError) Error() string {
	return fmt.Sprintf("tensor with %d elements is not a scalar", e.Size)
}

// RankError reports a sequence operation on a rank-0 tensor.
type RankError struct{}

func (e *RankError) Error() string { return "ndim is 0" }

// IdentityTypeError reports a rebind attempt with an object the wrapper
// cannot adopt.
type IdentityTypeError struct {
	Value any
}

func (e *IdentityTypeError) Error() string {
	return fmt.Sprintf("cannot rebind tensor from %T", e.Value)
}
