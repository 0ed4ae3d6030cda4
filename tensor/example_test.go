// Copyright 2025 Loom ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"fmt"

	"github.com/loom-ml/loom/backend/cpu"
	"github.com/loom-ml/loom/tensor"
)

func ExampleFromSlice() {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		panic(err)
	}
	fmt.Println(x)
	// Output: Tensor[float32][2 3] on CPU
}

func ExampleTensor_Add() {
	backend := cpu.New()

	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	y, _ := x.Add(10)

	values, _ := y.Floats()
	fmt.Println(values)
	// Output: [11 12 13]
}

func ExampleTensor_MatMul() {
	backend := cpu.New()

	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	b, _ := tensor.FromSlice([]float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2}, backend)

	c, _ := a.MatMul(b)
	values, _ := c.Floats()
	fmt.Println(c.Shape(), values)
	// Output: [2 2] [58 64 139 154]
}

func ExampleTensor_Sum() {
	backend := cpu.New()

	x := tensor.Arange[float32](1, 5, backend)
	total, _ := x.Sum()

	v, _ := total.Float()
	fmt.Println(v)
	// Output: 10
}

func ExampleTensor_Gt() {
	backend := cpu.New()

	x, _ := tensor.FromSlice([]float32{1, 5, 3}, tensor.Shape{3}, backend)
	mask, _ := x.Gt(2)

	s, _ := mask.ToSlice()
	fmt.Println(s)
	// Output: [false true true]
}
