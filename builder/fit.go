// SPDX-License-Identifier: MIT

package builder

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/georef/matrix"
)

// fitAffine computes the least-squares affine matrix mapping the points of
// design (one row per point: source ordinates then 1) to targets (one slice
// per target dimension), and the correlation of each target dimension.
//
// Implementation:
//   - Stage 1: reject NaN targets (missing grid cells) and under-determined systems.
//   - Stage 2: QR-factorize the design matrix once, solve for every target
//     dimension at once.
//   - Stage 3: correlation per dimension between values and fitted values;
//     exactly 1 when every residual is below exactFitTolerance·span, NaN when
//     the values are constant.
//
// Complexity:
//   - Time O(n·s²) for n points and s source dimensions, plus O(n·s·t) for t targets.
func fitAffine(design *mat.Dense, targets [][]float64) (*matrix.Dense, []float64, error) {
	n, cols := design.Dims()
	srcDim := cols - 1
	tgtDim := len(targets)
	if tgtDim == 0 {
		return nil, nil, errors.Wrap(ErrMissingValues, "no target point")
	}
	if n < cols {
		return nil, nil, errors.Wrapf(ErrDegenerateFit, "%d points for a %d-D affine fit", n, srcDim)
	}
	b := mat.NewDense(n, tgtDim, nil)
	for j, col := range targets {
		for i := 0; i < n; i++ {
			v := col[i]
			if math.IsNaN(v) {
				return nil, nil, errors.Wrapf(ErrMissingValues, "point %d, dimension %d", i, j)
			}
			b.Set(i, j, v)
		}
	}

	var qr mat.QR
	qr.Factorize(design)
	var x mat.Dense
	if err := qr.SolveTo(&x, false, b); err != nil {
		return nil, nil, errors.WithSecondaryError(errors.Wrap(ErrDegenerateFit, "least squares"), err)
	}

	out, err := matrix.NewDense(tgtDim+1, srcDim+1)
	if err != nil {
		return nil, nil, err
	}
	for j := 0; j < tgtDim; j++ {
		for k := 0; k <= srcDim; k++ {
			_ = out.Set(j, k, x.At(k, j))
		}
	}
	_ = out.Set(tgtDim, srcDim, 1)

	var fitted mat.Dense
	fitted.Mul(design, &x)
	correlations := make([]float64, tgtDim)
	z := make([]float64, n)
	zh := make([]float64, n)
	for j := 0; j < tgtDim; j++ {
		mat.Col(z, j, b)
		mat.Col(zh, j, &fitted)
		correlations[j] = correlation(z, zh)
	}

	return out, correlations, nil
}

// correlation returns the Pearson coefficient of values and fitted values,
// snapped to 1 for exact fits.
func correlation(z, zh []float64) float64 {
	span := floats.Max(z) - floats.Min(z)
	if !(span > 0) {
		return math.NaN() // constant or non-finite values
	}
	if floats.Distance(z, zh, math.Inf(1)) <= exactFitTolerance*span {
		return 1
	}
	c := stat.Correlation(z, zh, nil)

	return math.Max(-1, math.Min(1, c))
}

// gridDesign returns the design matrix of a full grid, dimension 0 varying fastest.
func gridDesign(gridSize []int, length int) *mat.Dense {
	cols := len(gridSize) + 1
	a := mat.NewDense(length, cols, nil)
	for idx := 0; idx < length; idx++ {
		r := idx
		for d, size := range gridSize {
			a.Set(idx, d, float64(r%size))
			r /= size
		}
		a.Set(idx, cols-1, 1)
	}

	return a
}

// scatterDesign returns the design matrix of ungridded sources (one slice per dimension).
func scatterDesign(sources [][]float64, n int) *mat.Dense {
	cols := len(sources) + 1
	a := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		for d, s := range sources {
			a.Set(i, d, s[i])
		}
		a.Set(i, cols-1, 1)
	}

	return a
}
