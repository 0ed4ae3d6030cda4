// Package cpu implements the CPU execution backend: pure Go kernels for the
// primitive operations the dispatch layer applies.
package cpu

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/loom-ml/loom/internal/tensor"
)

// Backend implements tensor.Backend on the CPU.
type Backend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *Backend {
	klog.V(2).Info("cpu backend initialized")
	return &Backend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (c *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *Backend) Device() tensor.Device {
	return c.device
}

// Apply executes one primitive operation described by op.
func (c *Backend) Apply(op tensor.Op, args ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	switch o := op.(type) {
	case tensor.Elemwise:
		out, err := c.elemwise(o.Mode, args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	case tensor.MatMul:
		out, err := c.matmul(o, args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	case tensor.Reduce:
		out, err := c.reduce(o, args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	case tensor.Reshape:
		out, err := c.reshape(o, args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	case tensor.Broadcast:
		out, err := c.broadcastTo(args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	case tensor.Transpose:
		out, err := c.transpose(o, args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	case tensor.Cast:
		out, err := c.cast(o, args)
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{out}, nil
	default:
		return nil, errors.Wrapf(tensor.ErrNotImplemented, "cpu: %s", op.OpName())
	}
}

func wantArgs(name string, want int, args []*tensor.RawTensor) error {
	if len(args) != want {
		return errors.Errorf("%s: expects %d args, got %d", name, want, len(args))
	}
	return nil
}
