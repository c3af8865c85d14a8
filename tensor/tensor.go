// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the fixed-size float32 buffers
// used by the residual training core.
//
// Example:
//
//	w, _ := tensor.Matrix(8, 8)
//	w.Set(0, 0, 1)
//	w.IsFinite() // true
package tensor

import (
	"github.com/born-ml/resblock/internal/tensor"
)

// Shape represents buffer dimensions, row-major.
type Shape = tensor.Shape

// Buffer is a fixed-length float32 buffer with a row-major shape.
type Buffer = tensor.Buffer

// ErrShapeMismatch is returned when a buffer, stride or dimension does not fit an operation.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// NewBuffer allocates a zeroed buffer for the given shape.
func NewBuffer(shape Shape) (*Buffer, error) {
	return tensor.NewBuffer(shape)
}

// Vector allocates a zeroed 1-D buffer.
func Vector(n int) (*Buffer, error) {
	return tensor.Vector(n)
}

// Matrix allocates a zeroed rows×cols buffer.
func Matrix(rows, cols int) (*Buffer, error) {
	return tensor.Matrix(rows, cols)
}
