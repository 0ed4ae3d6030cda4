// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides a GPU backend built on WebGPU compute shaders.
//
// Float32 elementwise arithmetic and 2D matmul run on the GPU; every other
// primitive transparently falls back to the CPU kernels. Construction fails
// with an error when no WebGPU device is available, so callers can degrade
// to the CPU backend:
//
//	var backend tensor.Backend
//	if gpu, err := webgpu.New(); err == nil {
//	    backend = gpu
//	} else {
//	    backend = cpu.New()
//	}
package webgpu

import (
	internalwebgpu "github.com/loom-ml/loom/internal/backend/webgpu"
	"github.com/loom-ml/loom/tensor"
)

// Backend represents the WebGPU backend implementation.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new WebGPU backend.
// Returns an error if WebGPU is not available or initialization fails.
func New() (*Backend, error) {
	return internalwebgpu.New()
}
