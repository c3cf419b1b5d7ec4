// SPDX-License-Identifier: MIT

package crs

import (
	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/matrix"
)

// SwapAndScaleAxes returns the affine matrix converting coordinates expressed
// in src into coordinates expressed in tgt, by reordering axes, reversing
// opposite directions and converting units.
//
// Implementation:
//   - Stage 1: for each target axis, find the first unused source axis with
//     the same absolute direction.
//   - Stage 2: coefficient = unit factor, negated when exactly one of the two
//     axes points the opposite way.
//   - Stage 3: source axes that no target axis uses are dropped, so a 3-D to
//     2-D matrix is (2+1)×(3+1).
//
// Errors:
//   - ErrIncompatibleAxes when a target axis has no counterpart.
//   - ErrIncompatibleUnit when units measure different quantities.
//
// Complexity:
//   - Time O(M*N), Space O((M+1)*(N+1)).
func SwapAndScaleAxes(src, tgt *CoordinateSystem) (*matrix.Dense, error) {
	n, m := src.Dimension(), tgt.Dimension()
	if n == 0 || m == 0 {
		return nil, errors.Wrap(ErrIncompatibleAxes, "SwapAndScaleAxes: empty coordinate system")
	}
	out, err := matrix.NewDense(m+1, n+1)
	if err != nil {
		return nil, err
	}
	used := make([]bool, n)
	for i, ta := range tgt.Axes {
		found := -1
		for j, sa := range src.Axes {
			if !used[j] && sa.Direction.Absolute() == ta.Direction.Absolute() {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, errors.Wrapf(ErrIncompatibleAxes, "no source axis for %q (%s)", ta.Name, ta.Direction)
		}
		used[found] = true
		sa := src.Axes[found]
		f, err := sa.Unit.ConversionFactor(ta.Unit)
		if err != nil {
			return nil, err
		}
		if sa.Direction != ta.Direction {
			f = -f
		}
		_ = out.Set(i, found, f)
	}
	_ = out.Set(m, n, 1)

	return out, nil
}
