// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API of the Loom framework.
//
// # Overview
//
// A Tensor is a mutable handle over an immutable value: every operation
// produces a fresh value, and in-place variants atomically rebind the handle
// to the new one. The package provides:
//   - Tensor: the dynamic-dtype tensor handle with the full operator surface
//   - RawTensor: the low-level value (shape, dtype, device, byte buffer)
//   - Backend: the interface compute engines implement
//   - Shape, DataType, Device: core type definitions
//
// # Basic Usage
//
//	import (
//	    "github.com/loom-ml/loom/tensor"
//	    "github.com/loom-ml/loom/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Full[float32](tensor.Shape{2, 3}, 0.5, backend)
//
//	    z, _ := x.Add(y)
//	    w, _ := x.MatMul(y.T())
//	    _ = z
//	    _ = w
//	}
//
// # Supported Data Types
//
//   - float32, float64, float16 (floating-point)
//   - int32, int64 (signed integers)
//   - uint8 (unsigned integers, useful for images)
//   - bool (boolean masks, produced by comparisons)
//
// # Broadcasting
//
// Binary operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)
//	c, _ := a.Add(b) // shape (3, 4)
//
// Scalars and Go slices mix freely with tensors; they are materialized on
// the tensor's device with a dtype inferred from the tensor operand:
//
//	y, _ := x.Mul(2.0)
//	z, _ := x.RSub(10) // 10 - x
//
// # Comparison Operations
//
// Lt, Le, Gt, Ge, Eq and Ne return Bool tensors. Gt and Ge reuse the
// less-than kernels with swapped operands; Ne is computed as NOT(EQ).
//
// # In-Place Operations
//
// AddInplace, MulInplace and friends compute the result out of place and
// atomically swap the handle's value. Other handles sharing the same value
// are unaffected.
//
// # Memory Management
//
// Values use reference-counted buffers; cloning is cheap and copies happen
// only on write.
package tensor
