// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/georef/matrix"
	"github.com/stretchr/testify/require"
)

// TestMul verifies a small product and dimension checks.
func TestMul(t *testing.T) {
	a, _ := matrix.NewDenseFrom(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b, _ := matrix.NewDenseFrom(3, 2, []float64{7, 8, 9, 10, 11, 12})

	p, err := matrix.Mul(a, b)
	require.NoError(t, err)
	require.Equal(t, []float64{58, 64, 139, 154}, p.RawData())

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Mul(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestInverseAxisSwap inverts a matrix with a zero diagonal, which needs pivoting.
func TestInverseAxisSwap(t *testing.T) {
	swap, _ := matrix.NewDenseFrom(3, 3, []float64{
		0, 2, 5, // x' = 2y + 5
		3, 0, 1, // y' = 3x + 1
		0, 0, 1,
	})
	inv, err := matrix.Inverse(swap)
	require.NoError(t, err)

	id, err := matrix.Mul(swap, inv)
	require.NoError(t, err)
	require.True(t, matrix.IsIdentity(id, 1e-12))
}

// TestInverseErrors covers the failure sentinels.
func TestInverseErrors(t *testing.T) {
	_, err := matrix.Inverse(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	rect, _ := matrix.NewDense(2, 3)
	_, err = matrix.Inverse(rect)
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	sing, _ := matrix.NewDenseFrom(2, 2, []float64{1, 2, 2, 4})
	_, err = matrix.Inverse(sing)
	require.ErrorIs(t, err, matrix.ErrSingular)
}

// TestMulVec applies an affine matrix to a homogeneous point.
func TestMulVec(t *testing.T) {
	m, _ := matrix.Translation([]float64{10, 20})
	out, err := matrix.MulVec(m, []float64{1, 2, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{11, 22, 1}, out)

	_, err = matrix.MulVec(m, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}
