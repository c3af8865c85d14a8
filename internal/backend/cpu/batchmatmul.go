package cpu

import (
	"fmt"

	"github.com/born-ml/resblock/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// GemmStridedBatched performs batched, strided matrix multiplication.
//
// For every batch slice p in [0, batchCount):
//
//	C_p = alpha * op(A_p) @ op(B_p) + beta * C_p
//
// where A_p starts at a[p*strideA], B_p at b[p*strideB] and C_p at
// c[p*strideC]. op(A) is m×k: A is stored m×k with leading dimension lda,
// or k×m when tA is blas.Trans. op(B) is k×n: stored k×n, or n×k when tB
// is blas.Trans. C is m×n with leading dimension ldc.
//
// beta = 0 overwrites C, beta = 1 accumulates into it. Slices are processed
// in order and never interact. Nothing is allocated.
//
// All dimensions, strides and buffer lengths are checked before any write;
// a violation returns an error wrapping tensor.ErrShapeMismatch.
func GemmStridedBatched(
	tA, tB blas.Transpose,
	m, n, k int,
	alpha float32,
	a []float32, lda, strideA int,
	b []float32, ldb, strideB int,
	beta float32,
	c []float32, ldc, strideC int,
	batchCount int,
) error {
	if m < 1 || n < 1 || k < 1 {
		return fmt.Errorf("%w: gemm: dimensions m=%d n=%d k=%d must be positive", tensor.ErrShapeMismatch, m, n, k)
	}
	if batchCount < 1 {
		return fmt.Errorf("%w: gemm: batch count %d must be positive", tensor.ErrShapeMismatch, batchCount)
	}
	if !validTranspose(tA) || !validTranspose(tB) {
		return fmt.Errorf("%w: gemm: unsupported transpose flags %c/%c", tensor.ErrShapeMismatch, tA, tB)
	}

	aRows, aCols := m, k
	if tA == blas.Trans {
		aRows, aCols = k, m
	}
	bRows, bCols := k, n
	if tB == blas.Trans {
		bRows, bCols = n, k
	}

	if err := checkOperand("A", a, aRows, aCols, lda, strideA, batchCount); err != nil {
		return err
	}
	if err := checkOperand("B", b, bRows, bCols, ldb, strideB, batchCount); err != nil {
		return err
	}
	if err := checkOperand("C", c, m, n, ldc, strideC, batchCount); err != nil {
		return err
	}

	for batch := 0; batch < batchCount; batch++ {
		aOffset := batch * strideA
		bOffset := batch * strideB
		cOffset := batch * strideC

		blas32.Gemm(tA, tB, alpha,
			general(a[aOffset:], aRows, aCols, lda),
			general(b[bOffset:], bRows, bCols, ldb),
			beta,
			general(c[cOffset:], m, n, ldc),
		)
	}

	return nil
}

// MatMul computes c = a @ b for dense row-major a (m×k), b (k×n), c (m×n).
// It is GemmStridedBatched with one batch, no transposes and beta = 0.
func MatMul(c, a, b []float32, m, k, n int) error {
	return GemmStridedBatched(blas.NoTrans, blas.NoTrans, m, n, k,
		1, a, k, m*k, b, n, k*n, 0, c, n, m*n, 1)
}

func validTranspose(t blas.Transpose) bool {
	return t == blas.NoTrans || t == blas.Trans
}

// checkOperand validates one stored matrix of rows×cols with leading
// dimension ld, repeated batchCount times at the given stride.
func checkOperand(name string, data []float32, rows, cols, ld, stride, batchCount int) error {
	if ld < cols {
		return fmt.Errorf("%w: gemm: leading dimension of %s is %d, need at least %d",
			tensor.ErrShapeMismatch, name, ld, cols)
	}
	if stride < 0 {
		return fmt.Errorf("%w: gemm: negative batch stride %d for %s", tensor.ErrShapeMismatch, stride, name)
	}
	if !fits(rows-1, ld, cols, len(data)) || !fits(batchCount-1, stride, matrixSpan(rows, cols, ld), len(data)) {
		return fmt.Errorf("%w: gemm: %s has %d elements, too few for %d batch(es) of %dx%d (ld=%d, stride=%d)",
			tensor.ErrShapeMismatch, name, len(data), batchCount, rows, cols, ld, stride)
	}
	return nil
}

// fits reports whether count*step + tail <= limit for non-negative
// arguments without forming the product.
func fits(count, step, tail, limit int) bool {
	if tail > limit {
		return false
	}
	return count == 0 || step == 0 || count <= (limit-tail)/step
}

// matrixSpan is the number of elements a rows×cols matrix with leading
// dimension ld occupies.
func matrixSpan(rows, cols, ld int) int {
	return (rows-1)*ld + cols
}

func general(data []float32, rows, cols, ld int) blas32.General {
	return blas32.General{
		Rows:   rows,
		Cols:   cols,
		Stride: ld,
		Data:   data[:matrixSpan(rows, cols, ld)],
	}
}
