package cpu

import (
	"fmt"

	"github.com/born-ml/resblock/internal/tensor"
	"gonum.org/v1/gonum/blas/blas32"
)

// Axpy computes y[i*incy] += alpha * x[i*incx] for i in [0, n).
//
// Strides let callers address sub-ranges or columns without copying.
// Increments must be positive.
func Axpy(n int, alpha float32, x []float32, incx int, y []float32, incy int) error {
	if err := checkStrided("axpy", n, "x", x, incx); err != nil {
		return err
	}
	if err := checkStrided("axpy", n, "y", y, incy); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	blas32.Axpy(alpha, vector(x, n, incx), vector(y, n, incy))
	return nil
}

// Scal computes x[i*incx] *= alpha for i in [0, n).
func Scal(n int, alpha float32, x []float32, incx int) error {
	if err := checkStrided("scal", n, "x", x, incx); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	blas32.Scal(alpha, vector(x, n, incx))
	return nil
}

// Nrm2 returns the Euclidean norm of x[0], x[incx], ..., x[(n-1)*incx].
func Nrm2(n int, x []float32, incx int) (float32, error) {
	if err := checkStrided("nrm2", n, "x", x, incx); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	return blas32.Nrm2(vector(x, n, incx)), nil
}

func checkStrided(op string, n int, name string, data []float32, inc int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s: negative length %d", tensor.ErrShapeMismatch, op, n)
	}
	if inc < 1 {
		return fmt.Errorf("%w: %s: increment of %s is %d, must be positive", tensor.ErrShapeMismatch, op, name, inc)
	}
	if n > 0 && !fits(n-1, inc, 1, len(data)) {
		return fmt.Errorf("%w: %s: %s has %d elements, too few for n=%d, inc=%d",
			tensor.ErrShapeMismatch, op, name, len(data), n, inc)
	}
	return nil
}

func vector(data []float32, n, inc int) blas32.Vector {
	return blas32.Vector{
		N:    n,
		Inc:  inc,
		Data: data[:(n-1)*inc+1],
	}
}
