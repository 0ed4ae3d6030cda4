// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go kernels (no CGO)
//   - Exact int64 arithmetic for integer tensors
//   - Float32 fast paths for same-shape arithmetic and matmul
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/loom-ml/loom/backend/cpu"
//	    "github.com/loom-ml/loom/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z, _ := x.Add(y)
//	    _ = z
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each operation is isolated
// and does not share mutable state.
package cpu
