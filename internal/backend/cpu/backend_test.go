package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/internal/tensor"
)

func rawF32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func rawF64(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat64(), data)
	return r
}

func rawI32(t *testing.T, data []int32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsInt32(), data)
	return r
}

func rawI64(t *testing.T, data []int64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Int64, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsInt64(), data)
	return r
}

func rawBool(t *testing.T, data []bool, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Bool, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsBool(), data)
	return r
}

// applyOne runs a primitive and unwraps its single result.
func applyOne(t *testing.T, b *Backend, op tensor.Op, args ...*tensor.RawTensor) *tensor.RawTensor {
	t.Helper()
	results, err := b.Apply(op, args...)
	require.NoError(t, err)
	require.Len(t, results, 1)
	return results[0]
}

func TestBackendIdentity(t *testing.T) {
	b := New()
	assert.Equal(t, "CPU", b.Name())
	assert.Equal(t, tensor.CPU, b.Device())
}

func TestApplyUnknownOp(t *testing.T) {
	b := New()
	_, err := b.Apply(unknownOp{})
	assert.ErrorIs(t, err, tensor.ErrNotImplemented)
}

type unknownOp struct{}

func (unknownOp) OpName() string { return "unknown" }
