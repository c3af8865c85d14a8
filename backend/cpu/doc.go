// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the numeric kernels of the residual training core.
//
// # Overview
//
// Every kernel is pure Go, stateless and allocation free:
//   - GemmStridedBatched: C = alpha*op(A)@op(B) + beta*C per batch slice
//   - ReLUForward / ReLUBackward: y = beta*y + max(alpha*x, 0) and its gradient
//   - Axpy, Scal, Nrm2: strided BLAS level-1 operations
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/resblock/backend/cpu"
//	    "gonum.org/v1/gonum/blas"
//	)
//
//	// product[8] = W[8x8] @ x[8]
//	err := cpu.GemmStridedBatched(blas.NoTrans, blas.NoTrans, 8, 1, 8,
//	    1, w, 8, 64, x, 1, 8, 0, product, 1, 8, 1)
//
// Kernels validate shapes and strides before touching memory and return an
// error wrapping tensor.ErrShapeMismatch on misuse.
package cpu
