// SPDX-License-Identifier: MIT

package transform

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/matrix"
)

// relativeStep scales the finite-difference step to the ordinate magnitude.
const relativeStep = 1e-6

// Derivative returns the M×N Jacobian of t at point. Differentiable
// transforms answer directly; others get a central finite difference.
//
// Implementation:
//   - Stage 1: delegate to Differentiable when implemented.
//   - Stage 2: for each source dimension j, evaluate t at point ± h·e_j in a
//     single two-point batch and store (f⁺ − f⁻)/(2h) in column j.
//
// Complexity:
//   - 2N evaluations of t.
func Derivative(t MathTransform, point []float64) (*matrix.Dense, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "Derivative: nil transform")
	}
	n, m := t.SourceDimensions(), t.TargetDimensions()
	if len(point) < n {
		return nil, errors.Wrapf(ErrMismatchedDimension, "Derivative: %d ordinates for %d-D source", len(point), n)
	}
	if d, ok := t.(Differentiable); ok {
		return d.Derivative(point[:n])
	}
	out, err := matrix.NewDense(m, n)
	if err != nil {
		return nil, errors.Wrap(err, "Derivative")
	}
	pts := make([]float64, 2*n)
	res := make([]float64, 2*m)
	for j := 0; j < n; j++ {
		h := relativeStep * math.Max(1, math.Abs(point[j]))
		copy(pts[:n], point[:n])
		copy(pts[n:], point[:n])
		pts[j] += h
		pts[n+j] -= h
		if err = t.Transform(pts, res, 2); err != nil {
			return nil, err
		}
		for i := 0; i < m; i++ {
			_ = out.Set(i, j, (res[i]-res[m+i])/(2*h))
		}
	}

	return out, nil
}
