// Package tensor provides the fixed-size float32 buffers every layer owns.
package tensor

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Buffer is a contiguous float32 buffer with a row-major shape.
//
// The length is fixed at allocation. Buffers are never resized; callers
// read and write them through Data, At and CopyFrom.
type Buffer struct {
	shape Shape
	data  []float32
}

// NewBuffer allocates a zeroed buffer for the given shape.
func NewBuffer(shape Shape) (*Buffer, error) {
	if err := shape.check(); err != nil {
		return nil, err
	}
	return &Buffer{
		shape: shape.clone(),
		data:  make([]float32, shape.NumElements()),
	}, nil
}

// Vector allocates a zeroed 1-D buffer of length n.
func Vector(n int) (*Buffer, error) {
	return NewBuffer(Shape{n})
}

// Matrix allocates a zeroed rows×cols buffer.
func Matrix(rows, cols int) (*Buffer, error) {
	return NewBuffer(Shape{rows, cols})
}

// Shape returns a copy of the buffer shape.
func (b *Buffer) Shape() Shape {
	return b.shape.clone()
}

// Len returns the number of elements.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Rows returns the number of rows of the row-major view.
func (b *Buffer) Rows() int {
	return b.shape.Rows()
}

// Cols returns the number of columns (also the row stride).
func (b *Buffer) Cols() int {
	return b.shape.Cols()
}

// Data returns the underlying slice. Writes through it are visible to the
// owner; its length never changes.
func (b *Buffer) Data() []float32 {
	return b.data
}

// At returns the element at row r, column c.
func (b *Buffer) At(r, c int) float32 {
	return b.data[r*b.Cols()+c]
}

// Set writes v at row r, column c.
func (b *Buffer) Set(r, c int, v float32) {
	b.data[r*b.Cols()+c] = v
}

// Zero clears every element.
func (b *Buffer) Zero() {
	clear(b.data)
}

// CopyFrom overwrites the buffer with src, which must have exactly Len elements.
func (b *Buffer) CopyFrom(src []float32) error {
	if len(src) != len(b.data) {
		return fmt.Errorf("%w: copy of %d elements into buffer %v", ErrShapeMismatch, len(src), b.shape)
	}
	copy(b.data, src)
	return nil
}

// Clone returns a copy of the data as a plain slice.
func (b *Buffer) Clone() []float32 {
	out := make([]float32, len(b.data))
	copy(out, b.data)
	return out
}

// IsFinite reports whether no element is NaN or ±Inf.
func (b *Buffer) IsFinite() bool {
	for _, v := range b.data {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest absolute value in the buffer.
func (b *Buffer) MaxAbs() float32 {
	var m float32
	for _, v := range b.data {
		m = math32.Max(m, math32.Abs(v))
	}
	return m
}
