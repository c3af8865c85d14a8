// Package cpu implements the numeric kernels of the residual training core.
//
// The kernels are stateless and operate only on caller-supplied buffers:
//   - GemmStridedBatched: batched, strided, optionally transposed matrix multiply
//   - ReLUForward / ReLUBackward: affine-scaled ReLU fused with an accumulate
//   - Axpy, Scal, Nrm2: BLAS level-1 vector operations
//
// None of them allocate. Every kernel validates its dimensions, strides and
// buffer lengths up front and returns an error wrapping
// tensor.ErrShapeMismatch instead of reading or writing out of bounds.
package cpu
