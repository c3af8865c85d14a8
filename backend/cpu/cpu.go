// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/resblock/internal/backend/cpu"
	"gonum.org/v1/gonum/blas"
)

// GemmStridedBatched performs batched, strided matrix multiplication:
// C_p = alpha * op(A_p) @ op(B_p) + beta * C_p for each batch slice p.
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
	return internalcpu.GemmStridedBatched(tA, tB, m, n, k, alpha,
		a, lda, strideA, b, ldb, strideB, beta, c, ldc, strideC, batchCount)
}

// MatMul computes c = a @ b for dense row-major a (m×k) and b (k×n).
func MatMul(c, a, b []float32, m, k, n int) error {
	return internalcpu.MatMul(c, a, b, m, k, n)
}

// ReLUForward computes y[i] = beta*y[i] + max(alpha*x[i], 0).
func ReLUForward(n int, alpha float32, x []float32, beta float32, y []float32) error {
	return internalcpu.ReLUForward(n, alpha, x, beta, y)
}

// ReLUBackward computes dx[i] = beta*dx[i] + (alpha*x[i] >= 0 ? alpha*dy[i] : 0).
func ReLUBackward(n int, alpha float32, dy, x []float32, beta float32, dx []float32) error {
	return internalcpu.ReLUBackward(n, alpha, dy, x, beta, dx)
}

// Axpy computes y[i*incy] += alpha * x[i*incx] for i in [0, n).
func Axpy(n int, alpha float32, x []float32, incx int, y []float32, incy int) error {
	return internalcpu.Axpy(n, alpha, x, incx, y, incy)
}

// Scal computes x[i*incx] *= alpha for i in [0, n).
func Scal(n int, alpha float32, x []float32, incx int) error {
	return internalcpu.Scal(n, alpha, x, incx)
}

// Nrm2 returns the Euclidean norm of n strided elements of x.
func Nrm2(n int, x []float32, incx int) (float32, error) {
	return internalcpu.Nrm2(n, x, incx)
}
