package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/internal/tensor"
)

func rawF32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.WebGPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func TestBinaryEligible(t *testing.T) {
	x := rawF32(t, []float32{1, 2}, tensor.Shape{2})
	y := rawF32(t, []float32{3, 4}, tensor.Shape{2})
	assert.True(t, binaryEligible([]*tensor.RawTensor{x, y}))

	// Shape mismatch goes to the CPU broadcast path.
	z := rawF32(t, []float32{3}, tensor.Shape{1})
	assert.False(t, binaryEligible([]*tensor.RawTensor{x, z}))

	// Non-float32 dtypes have no GPU kernel.
	i, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.WebGPU)
	require.NoError(t, err)
	assert.False(t, binaryEligible([]*tensor.RawTensor{i, i}))

	assert.False(t, binaryEligible([]*tensor.RawTensor{x}))
}

func TestUnaryEligible(t *testing.T) {
	x := rawF32(t, []float32{1, 2}, tensor.Shape{2})
	assert.True(t, unaryEligible([]*tensor.RawTensor{x}))
	assert.False(t, unaryEligible([]*tensor.RawTensor{x, x}))

	i, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int64, tensor.WebGPU)
	require.NoError(t, err)
	assert.False(t, unaryEligible([]*tensor.RawTensor{i}))
}

func TestMatMulEligible(t *testing.T) {
	x := rawF32(t, make([]float32, 6), tensor.Shape{2, 3})
	y := rawF32(t, make([]float32, 6), tensor.Shape{3, 2})

	op := tensor.MatMul{ComputeMode: tensor.ComputeModeDefault, Format: tensor.FormatDefault}
	assert.True(t, matmulEligible(op, []*tensor.RawTensor{x, y}))

	transposed := op
	transposed.TransposeA = true
	assert.False(t, matmulEligible(transposed, []*tensor.RawTensor{x, y}))

	nonDefault := op
	nonDefault.ComputeMode = "FLOAT32_AS_TF32"
	assert.False(t, matmulEligible(nonDefault, []*tensor.RawTensor{x, y}))

	// Inner dimensions must line up.
	bad := rawF32(t, make([]float32, 4), tensor.Shape{2, 2})
	assert.False(t, matmulEligible(op, []*tensor.RawTensor{x, bad}))

	// Only 2D operands.
	vec := rawF32(t, make([]float32, 3), tensor.Shape{3})
	assert.False(t, matmulEligible(op, []*tensor.RawTensor{vec, y}))
}

// requireGPU skips the test when no WebGPU device is available.
func requireGPU(t *testing.T) *Backend {
	t.Helper()
	b, err := New()
	if err != nil {
		t.Skipf("webgpu unavailable: %v", err)
	}
	t.Cleanup(b.Release)
	return b
}

func TestGPUAdd(t *testing.T) {
	b := requireGPU(t)
	x := rawF32(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	y := rawF32(t, []float32{10, 20, 30, 40}, tensor.Shape{4})

	results, err := b.Apply(tensor.Elemwise{Mode: tensor.ModeAdd}, x, y)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, tensor.WebGPU, results[0].Device())
	assert.InDeltaSlice(t, []float32{11, 22, 33, 44}, results[0].AsFloat32(), 1e-6)
}

func TestGPUNeg(t *testing.T) {
	b := requireGPU(t)
	x := rawF32(t, []float32{1, -2, 3}, tensor.Shape{3})

	results, err := b.Apply(tensor.Elemwise{Mode: tensor.ModeNegate}, x)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{-1, 2, -3}, results[0].AsFloat32(), 1e-6)
}

func TestGPUMatMul(t *testing.T) {
	b := requireGPU(t)
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	y := rawF32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	op := tensor.MatMul{ComputeMode: tensor.ComputeModeDefault, Format: tensor.FormatDefault}
	results, err := b.Apply(op, x, y)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{2, 2}, results[0].Shape())
	assert.InDeltaSlice(t, []float32{58, 64, 139, 154}, results[0].AsFloat32(), 1e-4)
}

func TestFallbackRetagsDevice(t *testing.T) {
	b := requireGPU(t)

	// Comparisons have no GPU kernel; they run on the CPU engine but stay
	// tagged to this backend's device.
	x := rawF32(t, []float32{1, 2}, tensor.Shape{2})
	y := rawF32(t, []float32{2, 2}, tensor.Shape{2})

	results, err := b.Apply(tensor.Elemwise{Mode: tensor.ModeLt}, x, y)
	require.NoError(t, err)
	assert.Equal(t, tensor.WebGPU, results[0].Device())
	assert.Equal(t, []bool{true, false}, results[0].AsBool())
}
