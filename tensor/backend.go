// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/loom-ml/loom/internal/tensor"

// Backend is the interface compute engines implement. The dispatch layer
// describes every primitive as an Op value and hands it to Apply; backends
// own kernels, device memory and scheduling.
//
// Implementations:
//   - backend/cpu: pure Go kernels
//   - backend/webgpu: WebGPU compute shaders with CPU fallback
//
// Example:
//
//	import (
//	    "github.com/loom-ml/loom/tensor"
//	    "github.com/loom-ml/loom/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	y, _ := x.Add(x) // backend.Apply under the hood
type Backend = tensor.Backend

// Op is the descriptor of one primitive operation handed to Backend.Apply.
type Op = tensor.Op

// Op descriptors. Custom backends switch on these concrete types.
type (
	// Elemwise describes an elementwise primitive.
	Elemwise = tensor.Elemwise
	// MatMul describes a matrix multiplication primitive.
	MatMul = tensor.MatMul
	// Reduce describes a single-axis reduction primitive.
	Reduce = tensor.Reduce
	// Reshape describes a reshape primitive.
	Reshape = tensor.Reshape
	// Broadcast describes a broadcast-to-shape primitive.
	Broadcast = tensor.Broadcast
	// Transpose describes an axis permutation primitive.
	Transpose = tensor.Transpose
	// Cast describes a dtype conversion primitive.
	Cast = tensor.Cast
)

// ElemwiseMode names an elementwise primitive.
type ElemwiseMode = tensor.ElemwiseMode

// Elementwise modes.
const (
	ModeAdd      ElemwiseMode = tensor.ModeAdd
	ModeSub      ElemwiseMode = tensor.ModeSub
	ModeMul      ElemwiseMode = tensor.ModeMul
	ModeTrueDiv  ElemwiseMode = tensor.ModeTrueDiv
	ModeFloorDiv ElemwiseMode = tensor.ModeFloorDiv
	ModeMod      ElemwiseMode = tensor.ModeMod
	ModePow      ElemwiseMode = tensor.ModePow
	ModeShl      ElemwiseMode = tensor.ModeShl
	ModeShr      ElemwiseMode = tensor.ModeShr
	ModeAnd      ElemwiseMode = tensor.ModeAnd
	ModeOr       ElemwiseMode = tensor.ModeOr
	ModeXor      ElemwiseMode = tensor.ModeXor
	ModeNot      ElemwiseMode = tensor.ModeNot
	ModeNegate   ElemwiseMode = tensor.ModeNegate
	ModeAbs      ElemwiseMode = tensor.ModeAbs
	ModeRound    ElemwiseMode = tensor.ModeRound
	ModeFloor    ElemwiseMode = tensor.ModeFloor
	ModeCeil     ElemwiseMode = tensor.ModeCeil
	ModeLt       ElemwiseMode = tensor.ModeLt
	ModeLeq      ElemwiseMode = tensor.ModeLeq
	ModeEq       ElemwiseMode = tensor.ModeEq
)

// ReduceMode names a reduction primitive.
type ReduceMode = tensor.ReduceMode

// Reduction modes.
const (
	ReduceSum     ReduceMode = tensor.ReduceSum
	ReduceProduct ReduceMode = tensor.ReduceProduct
	ReduceMin     ReduceMode = tensor.ReduceMin
	ReduceMax     ReduceMode = tensor.ReduceMax
	ReduceMean    ReduceMode = tensor.ReduceMean
)
