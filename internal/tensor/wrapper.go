package tensor

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Tensor is the user-facing tensor handle. It owns exactly one reference to
// an underlying RawTensor and forwards dtype, shape and device queries to it.
// The reference is held in a single atomic slot: in-place operators replace
// it wholesale (see Rebind), so a reader never observes a half-updated
// wrapper. There is no unbound state; every constructor either yields a
// wrapper holding a valid reference or fails.
type Tensor struct {
	slot    atomic.Pointer[RawTensor]
	backend Backend
}

// Wrap adopts an existing RawTensor reference.
func Wrap(raw *RawTensor, b Backend) *Tensor {
	if raw == nil {
		panic("wrap: nil raw tensor")
	}
	t := &Tensor{backend: b}
	t.slot.Store(raw)
	return t
}

// FromValue constructs a tensor from arbitrary input:
//   - another *Tensor shares its underlying reference (no copy)
//   - a *RawTensor is adopted directly
//   - Go scalars and flat slices are materialized as new primitive tensors
//   - nil fails loudly; there is no empty tensor
func FromValue(data any, b Backend) (*Tensor, error) {
	if data == nil {
		return nil, errors.New("cannot init a tensor with nil data")
	}
	switch x := data.(type) {
	case *Tensor:
		if x == nil {
			return nil, errors.New("cannot init a tensor with nil data")
		}
		return Wrap(x.Raw(), b), nil
	case *RawTensor:
		if x == nil {
			return nil, errors.New("cannot init a tensor with nil data")
		}
		return Wrap(x, b), nil
	default:
		op, err := AsOperand(data)
		if err != nil {
			return nil, err
		}
		raw, err := op.resolve(0, false, b.Device())
		if err != nil {
			return nil, err
		}
		return Wrap(raw, b), nil
	}
}

// Raw returns the current underlying RawTensor reference.
func (t *Tensor) Raw() *RawTensor {
	return t.slot.Load()
}

// Backend returns the execution backend.
func (t *Tensor) Backend() Backend {
	return t.backend
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.Raw().DType()
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.Raw().Shape()
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.Raw().Device()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.Raw().NumElements()
}

// Rebind atomically replaces the underlying reference. This is the sole
// state transition a wrapper undergoes; it happens only after the
// replacement value is fully computed, so a failed operation leaves the
// wrapper untouched.
//
// Accepted inputs mirror construction: another *Tensor (its reference is
// adopted), a *RawTensor, or raw data re-materialized with the wrapper's
// current dtype and device. Anything else is an IdentityTypeError.
func (t *Tensor) Rebind(other any) error {
	switch x := other.(type) {
	case *Tensor:
		if x == nil {
			return &IdentityTypeError{Value: other}
		}
		t.slot.Store(x.Raw())
		return nil
	case *RawTensor:
		if x == nil {
			return &IdentityTypeError{Value: other}
		}
		t.slot.Store(x)
		return nil
	case nil:
		return &IdentityTypeError{Value: other}
	default:
		op, err := AsOperand(other)
		if err != nil {
			return &IdentityTypeError{Value: other}
		}
		raw, err := op.resolve(t.DType(), true, t.Device())
		if err != nil {
			return err
		}
		t.slot.Store(raw)
		return nil
	}
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	raw := t.Raw()
	return fmt.Sprintf("Tensor[%s]%v on %s", raw.DType(), raw.Shape(), raw.Device())
}
