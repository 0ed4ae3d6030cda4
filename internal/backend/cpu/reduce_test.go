package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/internal/tensor"
)

func TestReduceModes(t *testing.T) {
	b := New()
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	tests := []struct {
		mode     tensor.ReduceMode
		axis     int
		expShape tensor.Shape
		expected []float32
	}{
		{tensor.ReduceSum, 0, tensor.Shape{3}, []float32{5, 7, 9}},
		{tensor.ReduceSum, 1, tensor.Shape{2}, []float32{6, 15}},
		{tensor.ReduceProduct, 1, tensor.Shape{2}, []float32{6, 120}},
		{tensor.ReduceMin, 0, tensor.Shape{3}, []float32{1, 2, 3}},
		{tensor.ReduceMax, 1, tensor.Shape{2}, []float32{3, 6}},
		{tensor.ReduceMean, 1, tensor.Shape{2}, []float32{2, 5}},
	}

	for _, tt := range tests {
		out := applyOne(t, b, tensor.Reduce{Mode: tt.mode, Axis: tt.axis}, x)
		require.Equal(t, tt.expShape, out.Shape(), "%s axis %d", tt.mode, tt.axis)
		assert.InDeltaSlice(t, tt.expected, out.AsFloat32(), 1e-6, "%s axis %d", tt.mode, tt.axis)
	}
}

func TestReduceNegativeAxis(t *testing.T) {
	b := New()
	x := rawF32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	out := applyOne(t, b, tensor.Reduce{Mode: tensor.ReduceSum, Axis: -1}, x)
	require.Equal(t, tensor.Shape{2}, out.Shape())
	assert.InDeltaSlice(t, []float32{6, 15}, out.AsFloat32(), 1e-6)
}

func TestReduceRankOneYieldsScalar(t *testing.T) {
	b := New()
	x := rawF32(t, []float32{2, 3, 4}, tensor.Shape{3})

	out := applyOne(t, b, tensor.Reduce{Mode: tensor.ReduceSum, Axis: 0}, x)
	require.Equal(t, tensor.Shape{}, out.Shape())
	assert.Equal(t, 1, out.NumElements())
	assert.InDelta(t, 9, out.AsFloat32()[0], 1e-6)
}

func TestReduceIntExact(t *testing.T) {
	b := New()
	x := rawI64(t, []int64{1, 2, 3, 4}, tensor.Shape{4})

	out := applyOne(t, b, tensor.Reduce{Mode: tensor.ReduceSum, Axis: 0}, x)
	assert.Equal(t, tensor.Int64, out.DType())
	assert.Equal(t, []int64{10}, out.AsInt64())
}

func TestReduceIntLargeValuesExact(t *testing.T) {
	b := New()

	// 2^53 + 1 is not representable in float64; integer sums must not
	// round through it.
	big := int64(1) << 53
	x := rawI64(t, []int64{big, 1}, tensor.Shape{2})

	sum := applyOne(t, b, tensor.Reduce{Mode: tensor.ReduceSum, Axis: 0}, x)
	assert.Equal(t, []int64{big + 1}, sum.AsInt64())

	top := applyOne(t, b, tensor.Reduce{Mode: tensor.ReduceMax, Axis: 0},
		rawI64(t, []int64{big + 1, big}, tensor.Shape{2}))
	assert.Equal(t, []int64{big + 1}, top.AsInt64())
}

func TestReduceMeanRequiresFloat(t *testing.T) {
	b := New()
	x := rawI32(t, []int32{1, 2}, tensor.Shape{2})

	_, err := b.Apply(tensor.Reduce{Mode: tensor.ReduceMean, Axis: 0}, x)
	assert.ErrorContains(t, err, "unsupported dtype")
}

func TestReduceAxisOutOfRange(t *testing.T) {
	b := New()
	x := rawF32(t, []float32{1, 2}, tensor.Shape{2})

	_, err := b.Apply(tensor.Reduce{Mode: tensor.ReduceSum, Axis: 1}, x)
	assert.ErrorContains(t, err, "out of range")

	_, err = b.Apply(tensor.Reduce{Mode: tensor.ReduceSum, Axis: -2}, x)
	assert.ErrorContains(t, err, "out of range")
}

func TestReduceMiddleAxis(t *testing.T) {
	b := New()
	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i)
	}
	x := rawF32(t, data, tensor.Shape{2, 3, 4})

	out := applyOne(t, b, tensor.Reduce{Mode: tensor.ReduceSum, Axis: 1}, x)
	require.Equal(t, tensor.Shape{2, 4}, out.Shape())
	// Column sums over the middle axis of each 3x4 block.
	assert.InDeltaSlice(t, []float32{12, 15, 18, 21, 48, 51, 54, 57}, out.AsFloat32(), 1e-5)
}
