package cpu

import (
	"fmt"

	"github.com/born-ml/resblock/internal/tensor"
)

// ReLUForward applies the affine-scaled ReLU fused with an accumulate:
//
//	y[i] = beta*y[i] + max(alpha*x[i], 0)
//
// With beta = 1 and y holding a residual term, the activation lands on top
// of the residual without an extra buffer.
func ReLUForward(n int, alpha float32, x []float32, beta float32, y []float32) error {
	if err := checkElementwise("relu forward", n, x, y); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		y[i] = beta*y[i] + max(alpha*x[i], 0)
	}
	return nil
}

// ReLUBackward computes the gradient of ReLUForward:
//
//	dx[i] = beta*dx[i] + (alpha*x[i] >= 0 ? alpha*dy[i] : 0)
//
// x must be the exact forward input of the activation. The gate is open at
// alpha*x[i] == 0.
func ReLUBackward(n int, alpha float32, dy, x []float32, beta float32, dx []float32) error {
	if err := checkElementwise("relu backward", n, dy, x, dx); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		var g float32
		if alpha*x[i] >= 0 {
			g = alpha * dy[i]
		}
		dx[i] = beta*dx[i] + g
	}
	return nil
}

func checkElementwise(op string, n int, bufs ...[]float32) error {
	if n < 0 {
		return fmt.Errorf("%w: %s: negative length %d", tensor.ErrShapeMismatch, op, n)
	}
	for i, b := range bufs {
		if len(b) < n {
			return fmt.Errorf("%w: %s: operand %d has %d elements, need %d",
				tensor.ErrShapeMismatch, op, i, len(b), n)
		}
	}
	return nil
}
