// SPDX-License-Identifier: MIT
package builder_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/georef/builder"
	"github.com/katalvlaran/georef/config"
	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// affine returns x' = a·x + b·y + c, y' = d·x + e·y + f.
func affine(t *testing.T, a, b, c, d, e, f float64) *transform.Linear {
	t.Helper()
	m, err := matrix.NewDenseFrom(3, 3, []float64{a, b, c, d, e, f, 0, 0, 1})
	require.NoError(t, err)

	return transform.MustLinear(m)
}

// newGrid returns a width×height grid filled with f(x, y).
func newGrid(t *testing.T, width, height int, f func(x, y float64) []float64, opts ...builder.Option) *builder.LocalizationGridBuilder {
	t.Helper()
	b, err := builder.NewLocalizationGridBuilder(width, height, opts...)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			require.NoError(t, b.SetControlPoint(x, y, f(float64(x), float64(y))...))
		}
	}

	return b
}

// warped is a mildly non-affine grid.
func warped(x, y float64) []float64 {
	return []float64{10*x + 0.2*x*y, 10*y + 0.1*x*x}
}

// TestGridAffine: an affine grid yields a linear transform.
func TestGridAffine(t *testing.T) {
	b := newGrid(t, 3, 3, func(x, y float64) []float64 { return []float64{5*x + 100, -2*y + 40} })
	mt, err := b.Create()
	require.NoError(t, err)
	_, ok := mt.(transform.LinearTransform)
	require.True(t, ok)
	require.Equal(t, []float64{1, 1}, b.Correlation())

	pts := []float64{2, 1, 0.5, 0.5}
	require.NoError(t, mt.Transform(pts, pts, 2))
	require.InDeltaSlice(t, []float64{110, 38, 102.5, 39}, pts, 1e-12)

	inv, err := mt.Inverse()
	require.NoError(t, err)
	require.NoError(t, inv.Transform(pts, pts, 2))
	require.InDeltaSlice(t, []float64{2, 1, 0.5, 0.5}, pts, 1e-12)

	require.ErrorIs(t, b.SetControlPoint(0, 0, 1, 1), builder.ErrUnmodifiable)
	require.ErrorIs(t, b.SetDesiredPrecision(1), builder.ErrUnmodifiable)
	again, err := b.Create()
	require.NoError(t, err)
	require.True(t, mt == again)
}

// TestGridResiduals: a warped grid is reproduced at every cell and inverted.
func TestGridResiduals(t *testing.T) {
	b := newGrid(t, 4, 4, warped)
	mt, err := b.Create()
	require.NoError(t, err)
	_, linear := mt.(transform.LinearTransform)
	require.False(t, linear)
	require.Less(t, b.Correlation()[0], 1.0)

	inv, err := mt.Inverse()
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			pt := []float64{float64(x), float64(y)}
			require.NoError(t, mt.Transform(pt, pt, 1))
			require.InDeltaSlice(t, warped(float64(x), float64(y)), pt, 1e-5)
			require.NoError(t, inv.Transform(pt, pt, 1))
			require.InDeltaSlice(t, []float64{float64(x), float64(y)}, pt, 1e-5)
		}
	}

	pt := []float64{1.5, 2.25}
	require.NoError(t, mt.Transform(pt, pt, 1))
	require.NoError(t, inv.Transform(pt, pt, 1))
	require.InDeltaSlice(t, []float64{1.5, 2.25}, pt, 1e-6)

	stats, err := b.Errors(false)
	require.NoError(t, err)
	require.Len(t, stats, 4)
	require.Equal(t, "Δx", stats[0].Label)
	require.Equal(t, "Δj", stats[3].Label)
	for _, s := range stats {
		require.Equal(t, 16, s.Count)
		require.Less(t, math.Abs(s.Max), 1e-5)
		require.Less(t, math.Abs(s.Min), 1e-5)
	}
	linStats, err := b.Errors(true)
	require.NoError(t, err)
	require.Greater(t, linStats[0].RMS, 1e-3)
	require.Contains(t, b.String(), "LocalizationGridBuilder[4×4]")
}

// TestGridPrecision: residuals below the desired precision keep the grid linear.
func TestGridPrecision(t *testing.T) {
	f := func(x, y float64) []float64 { return []float64{x + 1e-9*x*y, y} }

	strict := newGrid(t, 3, 3, f, builder.WithDesiredPrecision(1e-12))
	mt, err := strict.Create()
	require.NoError(t, err)
	_, ok := mt.(transform.LinearTransform)
	require.False(t, ok)

	loose := newGrid(t, 3, 3, f)
	require.ErrorIs(t, loose.SetDesiredPrecision(-1), builder.ErrInvalidArgument)
	require.NoError(t, loose.SetDesiredPrecision(1e-3))
	require.Equal(t, 1e-3, loose.DesiredPrecision())
	mt, err = loose.Create()
	require.NoError(t, err)
	_, ok = mt.(transform.LinearTransform)
	require.True(t, ok)
}

// bumped is an affine grid with the centre cell of a 3×3 grid moved by 0.3
// along x; the best affine fit is x + 1/30 with a correlation near 0.9934.
func bumped(x, y float64) []float64 {
	if x == 1 && y == 1 {
		return []float64{x + 0.3, y}
	}

	return []float64{x, y}
}

// TestGridLinearityThreshold: residuals within precision keep the grid
// linear only when every correlation reaches the threshold.
func TestGridLinearityThreshold(t *testing.T) {
	corrected := newGrid(t, 3, 3, bumped, builder.WithDesiredPrecision(1))
	mt, err := corrected.Create()
	require.NoError(t, err)
	_, linear := mt.(transform.LinearTransform)
	require.False(t, linear)
	require.InDelta(t, 0.9934, corrected.Correlation()[0], 1e-4)
	pt := []float64{1, 1}
	require.NoError(t, mt.Transform(pt, pt, 1))
	require.InDeltaSlice(t, []float64{1.3, 1}, pt, 1e-6)

	relaxed := newGrid(t, 3, 3, bumped, builder.WithDesiredPrecision(1), builder.WithLinearityThreshold(0.9))
	mt, err = relaxed.Create()
	require.NoError(t, err)
	_, linear = mt.(transform.LinearTransform)
	require.True(t, linear)
	pt = []float64{1, 1}
	require.NoError(t, mt.Transform(pt, pt, 1))
	require.InDeltaSlice(t, []float64{1 + 1.0/30, 1}, pt, 1e-12)
}

// TestGridResidualCorrection: the residual grid removes the error left by
// the affine fit at every control point.
func TestGridResidualCorrection(t *testing.T) {
	b := newGrid(t, 3, 3, bumped)
	_, err := b.Create()
	require.NoError(t, err)

	affineOnly, err := b.Errors(true)
	require.NoError(t, err)
	corrected, err := b.Errors(false)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(0.08/9), affineOnly[0].RMS, 1e-9)
	require.InDelta(t, 0.3-1.0/30, -affineOnly[0].Min, 1e-9)
	for d := 0; d < 2; d++ {
		require.Less(t, math.Abs(corrected[d].Min), 1e-6, corrected[d].Label)
		require.Less(t, math.Abs(corrected[d].Max), 1e-6, corrected[d].Label)
	}
	require.Less(t, corrected[0].RMS, affineOnly[0].RMS/1e4)
}

// TestGridConfig: loaded tolerances are applied once they pass the ranges
// the options accept.
func TestGridConfig(t *testing.T) {
	grid := config.Default().Grid
	grid.DesiredPrecision = 1
	grid.LinearityThreshold = 0.9
	opt, err := builder.WithConfig(grid)
	require.NoError(t, err)
	mt, err := newGrid(t, 3, 3, bumped, opt).Create()
	require.NoError(t, err)
	_, linear := mt.(transform.LinearTransform)
	require.True(t, linear)

	for name, edit := range map[string]func(*config.GridConfig){
		"max_iterations":      func(g *config.GridConfig) { g.MaxIterations = 0 },
		"desired_precision":   func(g *config.GridConfig) { g.DesiredPrecision = math.Inf(1) },
		"inference_epsilon":   func(g *config.GridConfig) { g.InferenceEpsilon = 1 },
		"linearity_threshold": func(g *config.GridConfig) { g.LinearityThreshold = 0 },
	} {
		bad := config.Default().Grid
		edit(&bad)
		opt, err := builder.WithConfig(bad)
		require.ErrorIs(t, err, builder.ErrInvalidArgument, name)
		require.ErrorIs(t, err, config.ErrInvalidConfig, name)
		require.Contains(t, err.Error(), name)
		require.Nil(t, opt, name)
	}
}

// TestGridFromVectors infers the grid size and the source to grid conversion.
func TestGridFromVectors(t *testing.T) {
	b, err := builder.NewLocalizationGridBuilderFromVectors([]float64{0.5, 1.5, 2.5}, []float64{10, 20})
	require.NoError(t, err)
	require.Equal(t, 3, b.Width())
	require.Equal(t, 2, b.Height())
	require.InDeltaSlice(t, []float64{1, 0, -0.5, 0, 0.1, -1, 0, 0, 1}, b.SourceToGrid().Matrix().RawData(), 1e-12)

	env, err := b.SourceEnvelope(false)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.5, 10}, env.Min[:], 1e-12)
	require.InDeltaSlice(t, []float64{2.5, 20}, env.Max[:], 1e-12)
	env, err = b.SourceEnvelope(true)
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0, 5}, env.Min[:], 1e-12)
	require.InDeltaSlice(t, []float64{3, 25}, env.Max[:], 1e-12)

	_, err = builder.NewLocalizationGridBuilderFromVectors([]float64{0, 1, 100}, []float64{0, 1})
	require.ErrorIs(t, err, builder.ErrCannotInferGridSize)
	_, err = builder.NewLocalizationGridBuilderFromVectors([]float64{3, 3}, []float64{0, 1})
	require.ErrorIs(t, err, builder.ErrCannotInferGridSize)
}

// TestGridPrecisionInSourceUnits: the desired precision is converted to cells
// through the source-to-grid conversion.
func TestGridPrecisionInSourceUnits(t *testing.T) {
	create := func(precision float64) transform.MathTransform {
		b, err := builder.NewLocalizationGridBuilderFromVectors([]float64{0, 10, 20}, []float64{0, 10, 20},
			builder.WithLinearityThreshold(0.9))
		require.NoError(t, err)
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				require.NoError(t, b.SetControlPoint(x, y, bumped(float64(x), float64(y))...))
			}
		}
		require.NoError(t, b.SetDesiredPrecision(precision))
		mt, err := b.Create()
		require.NoError(t, err)

		return mt
	}

	// The centre residual is about 0.27 cells: 1 unit is 0.1 cell, 5 units are 0.5 cell.
	_, ok := create(1).(transform.LinearTransform)
	require.False(t, ok)
	_, ok = create(5).(transform.LinearTransform)
	require.True(t, ok)
}

// TestGridFromScattered adopts scattered points on a regular lattice.
func TestGridFromScattered(t *testing.T) {
	linear, _ := builder.NewLinearTransformBuilder(nil)
	var pts []builder.ControlPoint
	for _, y := range []float64{100, 200} {
		for _, x := range []float64{2, 4, 6} {
			pts = append(pts, builder.ControlPoint{Source: []float64{x, y}, Target: []float64{x + y, x - y}})
		}
	}
	require.NoError(t, linear.SetControlPoints(pts))

	b, err := builder.NewLocalizationGridBuilderFrom(linear)
	require.NoError(t, err)
	require.Equal(t, 3, b.Width())
	require.Equal(t, 2, b.Height())
	require.Equal(t, []float64{206, -194}, b.ControlPoint(2, 1))

	mt, err := b.Create()
	require.NoError(t, err)
	pt := []float64{4, 150}
	require.NoError(t, mt.Transform(pt, pt, 1))
	require.InDeltaSlice(t, []float64{154, -146}, pt, 1e-9)
}

// TestGridFromScatteredLinearizers: evaluating the adopted linearizers leaves
// those of the scattered builder untouched.
func TestGridFromScatteredLinearizers(t *testing.T) {
	linear, _ := builder.NewLinearTransformBuilder(nil)
	var pts []builder.ControlPoint
	for _, y := range []float64{100, 200} {
		for _, x := range []float64{2, 4, 6} {
			pts = append(pts, builder.ControlPoint{Source: []float64{x, y}, Target: []float64{math.Exp(x / 2), y}})
		}
	}
	require.NoError(t, linear.SetControlPoints(pts))
	require.NoError(t, linear.AddLinearizers([]builder.NamedTransform{{Name: "log", Transform: logX(true)}}, true))

	b, err := builder.NewLocalizationGridBuilderFrom(linear)
	require.NoError(t, err)
	_, err = b.Create()
	require.NoError(t, err)
	require.Equal(t, "log", b.Linearizer(false).Name)
	require.InDelta(t, 1, b.Linearizer(false).Correlation, 1e-9)

	require.Nil(t, linear.AppliedLinearizer())
	require.Contains(t, linear.String(), "NaN")
	require.NotContains(t, linear.String(), "*")
}

// TestGridCompensation appends the inverse of the selected linearizer.
func TestGridCompensation(t *testing.T) {
	f := func(x, y float64) []float64 { return []float64{math.Exp(x / 2), y} }
	b := newGrid(t, 4, 3, f)
	require.NoError(t, b.AddLinearizers([]builder.NamedTransform{{Name: "log", Transform: logX(true)}}, true))
	mt, err := b.Create()
	require.NoError(t, err)
	require.Nil(t, b.Linearizer(true))
	require.Equal(t, "log", b.Linearizer(false).Name)

	pt := []float64{3, 2}
	require.NoError(t, mt.Transform(pt, pt, 1))
	require.InDeltaSlice(t, f(3, 2), pt, 1e-9)

	nonInvertible := newGrid(t, 4, 3, f)
	require.NoError(t, nonInvertible.AddLinearizers([]builder.NamedTransform{{Name: "log", Transform: logX(false)}}, true))
	_, err = nonInvertible.Create()
	require.ErrorIs(t, err, builder.ErrNonInvertibleLinearizer)
}

// TestGridAccessors covers rows, columns and bulk control points.
func TestGridAccessors(t *testing.T) {
	b, err := builder.NewLocalizationGridBuilder(3, 2)
	require.NoError(t, err)
	_, err = b.Errors(false)
	require.ErrorIs(t, err, builder.ErrNotCreated)

	require.ErrorIs(t, b.SetControlPoints([]float64{1, 2}), builder.ErrMismatchedDimension)
	require.NoError(t, b.SetControlPoints(
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{10, 11, 12, 13, 14, 15},
	))
	row, err := b.Row(1, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{13, 14, 15}, row)
	col, err := b.Column(0, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 5}, col)
	_, err = b.Column(2, 0)
	require.ErrorIs(t, err, builder.ErrInvalidArgument)

	require.ErrorIs(t, b.SetSourceToGrid(transform.Identity(3)), builder.ErrMismatchedDimension)
	require.NoError(t, b.SetSourceToGrid(affine(t, 2, 0, 0, 0, 2, 0)))
	_, err = b.Create()
	require.NoError(t, err)
}
