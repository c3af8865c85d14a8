package tensor

import (
	"fmt"
	"slices"
)

// Shape lists buffer dimensions, outermost first. Buffers are row-major,
// so the last dimension is also the row stride.
type Shape []int

// NumElements returns the product of the dimensions.
func (s Shape) NumElements() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// check rejects empty shapes and non-positive dimensions.
func (s Shape) check() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: buffer needs at least one dimension", ErrShapeMismatch)
	}
	for i, d := range s {
		if d < 1 {
			return fmt.Errorf("%w: dimension %d of %v is %d, must be positive", ErrShapeMismatch, i, s, d)
		}
	}
	return nil
}

// Rows is the number of rows of the row-major matrix view. A vector is a
// single row.
func (s Shape) Rows() int {
	if len(s) < 2 {
		return 1
	}
	return s.NumElements() / s[len(s)-1]
}

// Cols is the last dimension.
func (s Shape) Cols() int {
	if len(s) == 0 {
		return 1
	}
	return s[len(s)-1]
}

func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

func (s Shape) clone() Shape {
	return slices.Clone(s)
}
