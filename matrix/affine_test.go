// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/georef/matrix"
	"github.com/stretchr/testify/require"
)

// TestElementOrZero: missing data reads as zero.
func TestElementOrZero(t *testing.T) {
	m, _ := matrix.NewDenseFrom(1, 1, []float64{5})
	require.Equal(t, 5.0, matrix.ElementOrZero(m, 0, 0))
	require.Equal(t, 0.0, matrix.ElementOrZero(m, 3, 0))
	require.Equal(t, 0.0, matrix.ElementOrZero(nil, 0, 0))
}

// TestCreateDimensionSelect keeps dimensions 2 and 0 of a 3-D space.
func TestCreateDimensionSelect(t *testing.T) {
	m, err := matrix.CreateDimensionSelect(3, []int{2, 0})
	require.NoError(t, err)
	require.Equal(t, []float64{
		0, 0, 1, 0,
		1, 0, 0, 0,
		0, 0, 0, 1,
	}, m.RawData())

	_, err = matrix.CreateDimensionSelect(3, []int{3})
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

// TestCreatePassThrough embeds a 1-D scale+offset between one leading and one trailing dimension.
func TestCreatePassThrough(t *testing.T) {
	sub, _ := matrix.NewDenseFrom(2, 2, []float64{2, 7, 0, 1})
	m, err := matrix.CreatePassThrough(1, sub, 1)
	require.NoError(t, err)
	require.True(t, matrix.IsAffine(m))

	out, err := matrix.MulVec(m, []float64{1, 2, 3, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{1, 11, 3, 1}, out) // only the middle dimension changed

	notAffine, _ := matrix.NewDenseFrom(2, 2, []float64{1, 0, 1, 1})
	_, err = matrix.CreatePassThrough(0, notAffine, 0)
	require.ErrorIs(t, err, matrix.ErrNotAffine)
}

// TestScaleTranslation composes scale then translation.
func TestScaleTranslation(t *testing.T) {
	s, _ := matrix.Scale([]float64{2, 3})
	tr, _ := matrix.Translation([]float64{1, 1})
	m, err := matrix.Mul(tr, s)
	require.NoError(t, err)

	out, _ := matrix.MulVec(m, []float64{1, 1, 1})
	require.Equal(t, []float64{3, 4, 1}, out)
	require.False(t, matrix.IsIdentity(m, 0))

	id, _ := matrix.NewAffineIdentity(2)
	require.True(t, matrix.IsIdentity(id, 0))
}
