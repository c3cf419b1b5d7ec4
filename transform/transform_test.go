// SPDX-License-Identifier: MIT
package transform_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// affine2D returns x' = a·x + b·y + c, y' = d·x + e·y + f.
func affine2D(t *testing.T, a, b, c, d, e, f float64) *transform.Linear {
	t.Helper()
	m, err := matrix.NewDenseFrom(3, 3, []float64{a, b, c, d, e, f, 0, 0, 1})
	require.NoError(t, err)
	l, err := transform.NewLinear(m)
	require.NoError(t, err)

	return l
}

// square is a non-linear 1-D function used to exercise the generic paths.
func square() *transform.Func {
	return transform.NewFunc("square", 1, 1, nil,
		func(src, dst []float64) error { dst[0] = src[0] * src[0]; return nil },
		func(src, dst []float64) error {
			if src[0] < 0 {
				return errors.New("negative")
			}
			dst[0] = math.Sqrt(src[0])
			return nil
		})
}

// TestLinearInPlace transforms in place and back through the inverse.
func TestLinearInPlace(t *testing.T) {
	l := affine2D(t, 0, 2, 5, 3, 0, 1) // axis swap with scale
	pts := []float64{1, 2, 3, 4}
	require.NoError(t, l.Transform(pts, pts, 2))
	require.Equal(t, []float64{9, 4, 13, 10}, pts)

	inv, err := l.Inverse()
	require.NoError(t, err)
	require.NoError(t, inv.Transform(pts, pts, 2))
	require.InDeltaSlice(t, []float64{1, 2, 3, 4}, pts, 1e-12)
}

// TestLinearNonSquare: dimension selection has no inverse.
func TestLinearNonSquare(t *testing.T) {
	m, _ := matrix.CreateDimensionSelect(3, []int{0, 1})
	l, err := transform.NewLinear(m)
	require.NoError(t, err)
	require.Equal(t, 3, l.SourceDimensions())
	require.Equal(t, 2, l.TargetDimensions())

	_, err = l.Inverse()
	require.ErrorIs(t, err, transform.ErrNoninvertible)
}

// TestConcatenateLinear collapses two matrices into one.
func TestConcatenateLinear(t *testing.T) {
	a := affine2D(t, 2, 0, 0, 0, 2, 0)
	b := affine2D(t, 1, 0, 10, 0, 1, 20)
	c, err := transform.Concatenate(a, b)
	require.NoError(t, err)
	_, isLinear := c.(transform.LinearTransform)
	require.True(t, isLinear)

	out := make([]float64, 2)
	require.NoError(t, c.Transform([]float64{1, 1}, out, 1))
	require.Equal(t, []float64{12, 22}, out)

	id, err := transform.Concatenate(transform.Identity(2), b)
	require.NoError(t, err)
	require.Same(t, b, id)

	_, err = transform.Concatenate(transform.Identity(3), b)
	require.ErrorIs(t, err, transform.ErrMismatchedDimension)
}

// TestConcatenateGeneric chains a non-linear step and inverts it.
func TestConcatenateGeneric(t *testing.T) {
	shift := transform.MustLinear(mustDense(t, 2, 2, []float64{1, 3, 0, 1}))
	c, err := transform.ConcatenateAll(square(), shift)
	require.NoError(t, err)
	require.Len(t, transform.Steps(c), 2)

	out := make([]float64, 2)
	require.NoError(t, c.Transform([]float64{2, 3}, out, 2))
	require.Equal(t, []float64{7, 12}, out)

	inv, err := c.Inverse()
	require.NoError(t, err)
	require.NoError(t, inv.Transform(out, out, 2))
	require.InDeltaSlice(t, []float64{2, 3}, out, 1e-12)

	err = inv.Transform([]float64{0}, out, 1) // sqrt(0-3) fails
	require.ErrorIs(t, err, transform.ErrTransform)
}

// TestPassThroughUntouched leaves leading and trailing ordinates bit-identical.
func TestPassThroughUntouched(t *testing.T) {
	p, err := transform.PassThrough(1, square(), 2)
	require.NoError(t, err)
	require.Equal(t, 4, p.SourceDimensions())

	pts := []float64{0.1, 3, 0.7, -9, 5, 4, 1e300, math.Pi}
	require.NoError(t, p.Transform(pts, pts, 2))
	require.Equal(t, []float64{0.1, 9, 0.7, -9, 5, 16, 1e300, math.Pi}, pts)

	d, err := transform.Derivative(p, []float64{0, 3, 0, 0})
	require.NoError(t, err)
	v, _ := d.At(1, 1)
	require.InDelta(t, 6, v, 1e-6)
	v, _ = d.At(3, 3)
	require.Equal(t, 1.0, v)
}

// TestPassThroughIndicesScattered applies the sub-transform to dimensions 0 and 2.
func TestPassThroughIndicesScattered(t *testing.T) {
	sub := affine2D(t, 1, 0, 100, 0, -1, 0)
	p, err := transform.PassThroughIndices(3, []int{0, 2}, sub)
	require.NoError(t, err)

	out := make([]float64, 3)
	require.NoError(t, p.Transform([]float64{1, 2, 3}, out, 1))
	require.Equal(t, []float64{101, 2, -3}, out)

	_, err = transform.PassThroughIndices(3, []int{2, 0}, sub)
	require.ErrorIs(t, err, transform.ErrInvalidArgument)
}

// TestDerivativeFiniteDifference checks the numeric Jacobian of a Func.
func TestDerivativeFiniteDifference(t *testing.T) {
	d, err := transform.Derivative(square(), []float64{3})
	require.NoError(t, err)
	v, _ := d.At(0, 0)
	require.InDelta(t, 6, v, 1e-6)
}

// TestEqual compares structure within tolerance.
func TestEqual(t *testing.T) {
	a := affine2D(t, 1, 0, 1e-12, 0, 1, 0)
	require.True(t, transform.Equal(a, transform.Identity(2), 1e-9))
	require.False(t, transform.Equal(a, transform.Identity(2), 0))
	require.True(t, transform.Equal(square(), square(), 0))
	require.False(t, transform.Equal(square(), transform.Identity(1), 1))
}

func mustDense(t *testing.T, r, c int, data []float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, data)
	require.NoError(t, err)

	return m
}
