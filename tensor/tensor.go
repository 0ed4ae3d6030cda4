// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/loom-ml/loom/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types.
// Supported types: float32, float64, int32, int64, uint8, bool.
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a handle over an immutable tensor value bound to a backend.
//
// Operations never mutate the current value; in-place variants atomically
// rebind the handle to the freshly computed one. Binary operations accept
// tensors, Go scalars and Go slices interchangeably.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	y, _ := x.Add(2.0)
//	mask, _ := y.Gt(x)
type Tensor = tensor.Tensor

// Sentinel errors.
var (
	// ErrNotImplemented marks operations the backend or the API does not
	// support. Test with errors.Is.
	ErrNotImplemented = tensor.ErrNotImplemented
)

// FromValue builds a tensor from arbitrary data: another *Tensor (sharing
// its value), a *RawTensor, a Go scalar, or a Go slice.
//
// Example:
//
//	backend := cpu.New()
//	x, err := tensor.FromValue([]float32{1, 2, 3}, backend)
func FromValue(data any, b Backend) (*Tensor, error) {
	return tensor.FromValue(data, b)
}

// Wrap creates a tensor handle over an existing raw value.
//
// This is a low-level function. Most users should use creation functions
// like Zeros, Ones or FromSlice instead.
func Wrap(raw *RawTensor, b Backend) *Tensor {
	return tensor.Wrap(raw, b)
}

// Creation functions

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func Zeros[T DType](shape Shape, b Backend) *Tensor {
	return tensor.Zeros[T](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape, b Backend) *Tensor {
	return tensor.Ones[T](shape, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Full[float32](tensor.Shape{2, 3}, 3.14, backend)
func Full[T DType](shape Shape, value T, b Backend) *Tensor {
	return tensor.Full[T](shape, value, b)
}

// Arange creates a 1D tensor with values from start to end (exclusive).
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Arange[float32](0, 10, backend) // [0, 1, 2, ..., 9]
func Arange[T DType](start, end T, b Backend) *Tensor {
	return tensor.Arange[T](start, end, b)
}

// Eye creates a 2D identity matrix.
//
// Example:
//
//	backend := cpu.New()
//	identity := tensor.Eye[float32](3, backend) // 3x3 identity matrix
func Eye[T DType](n int, b Backend) *Tensor {
	return tensor.Eye[T](n, b)
}

// FromSlice creates a tensor from a Go slice with an explicit shape.
//
// Example:
//
//	backend := cpu.New()
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
func FromSlice[T DType](data []T, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromSlice(data, shape, b)
}

// NewRaw creates a new raw tensor value with the given shape, dtype and
// device.
//
// This is a low-level function. Most users should use high-level creation
// functions instead.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
