package tensor

import "errors"

// ErrShapeMismatch is returned when a buffer, stride or dimension does not
// match what an operation requires.
var ErrShapeMismatch = errors.New("shape mismatch")
