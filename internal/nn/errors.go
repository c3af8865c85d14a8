package nn

import (
	"errors"

	"github.com/born-ml/resblock/internal/tensor"
)

// Common errors.
var (
	// ErrPassOrder is returned when a layer or network operation is called
	// out of the ZeroForward → Forward → ZeroBackward → Backward → Update order.
	ErrPassOrder = errors.New("operation out of pass order")

	// ErrInvalidConfig is returned by NewNetwork for unusable configurations.
	ErrInvalidConfig = errors.New("invalid network config")

	// ErrShapeMismatch is tensor.ErrShapeMismatch, re-exported for callers of this package.
	ErrShapeMismatch = tensor.ErrShapeMismatch
)
