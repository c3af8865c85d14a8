package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/resblock/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxpy(t *testing.T) {
	x := []float32{1, 2, 3}
	y := []float32{10, 20, 30}

	require.NoError(t, Axpy(3, 2, x, 1, y, 1))
	assert.Equal(t, []float32{12, 24, 36}, y)
}

func TestAxpy_Strided(t *testing.T) {
	// Column 1 of a 3x2 matrix into every other element of y.
	x := []float32{0, 1, 0, 2, 0, 3}
	y := []float32{1, -1, 1, -1, 1}

	require.NoError(t, Axpy(3, -1, x[1:], 2, y, 2))
	assert.Equal(t, []float32{0, -1, -1, -1, -2}, y)
}

func TestAxpy_Errors(t *testing.T) {
	x := []float32{1, 2, 3}
	y := []float32{0, 0}

	assert.ErrorIs(t, Axpy(3, 1, x, 1, y, 1), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, Axpy(2, 1, x, 3, y, 1), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, Axpy(2, 1, x, 0, y, 1), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, Axpy(-1, 1, x, 1, y, 1), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, Axpy(2, 1, x, math.MaxInt/2+1, y, 1), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, Axpy(2, 1, x, 1, y, math.MaxInt), tensor.ErrShapeMismatch)
	assert.Equal(t, []float32{0, 0}, y)

	assert.NoError(t, Axpy(0, 1, nil, 1, nil, 1))
}

func TestScal(t *testing.T) {
	x := []float32{1, 2, 3, 4}

	require.NoError(t, Scal(2, -1, x, 2))
	assert.Equal(t, []float32{-1, 2, -3, 4}, x)

	assert.ErrorIs(t, Scal(5, 1, x, 1), tensor.ErrShapeMismatch)
	assert.ErrorIs(t, Scal(3, 1, x, math.MaxInt/2+1), tensor.ErrShapeMismatch)
	assert.Equal(t, []float32{-1, 2, -3, 4}, x)
}

func TestNrm2(t *testing.T) {
	x := []float32{3, 100, 4}

	norm, err := Nrm2(2, x, 2)
	require.NoError(t, err)
	assert.InDelta(t, 5, norm, 1e-6)

	norm, err = Nrm2(0, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, norm)

	_, err = Nrm2(3, x, 2)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}
