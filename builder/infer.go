// SPDX-License-Identifier: MIT

package builder

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
)

// inferGridSize returns the number of grid cells along one axis spanned by
// values, with the grid-to-source step and origin. Values should be
// integers, but a constant offset (typically 0.5) is tolerated.
//
// Implementation:
//   - Stage 1: if consecutive values form an arithmetic progression within
//     eps·span, its increment is the step.
//   - Stage 2: otherwise the step is the greatest common divisor of the
//     offsets from the minimum, computed by the Euclidean algorithm with the
//     same tolerance.
//   - Stage 3: size = round(span/step)+1, accepted only when span/step is in
//     [0.5, len(values)-0.5); larger sizes would leave holes in the grid.
func inferGridSize(values []float64, eps float64) (size int, step, origin float64, err error) {
	if len(values) < 2 {
		return 0, 0, 0, errors.Wrapf(ErrCannotInferGridSize, "%d values", len(values))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, errors.Wrap(ErrCannotInferGridSize, "non-finite value")
		}
	}
	origin = floats.Min(values)
	span := floats.Max(values) - origin
	if !(span > 0) {
		return 0, 0, 0, errors.Wrapf(ErrCannotInferGridSize, "range [%g … %g]", origin, origin+span)
	}
	tolerance := eps * span

	step = math.Abs(values[1] - values[0])
	for i := 2; i < len(values) && step > 0; i++ {
		if math.Abs(math.Abs(values[i]-values[i-1])-step) > tolerance {
			step = 0
		}
	}
	if step == 0 {
		step = span
		for _, value := range values {
			v := value - origin
			if math.Abs(math.Mod(v, step)) <= tolerance {
				continue
			}
			for math.Abs(v) > tolerance {
				step, v = v, math.Mod(step, v)
			}
		}
	}

	n := span / step
	if n >= 0.5 && n < float64(len(values))-0.5 {
		return int(math.Round(n)) + 1, step, origin, nil
	}

	return 0, 0, 0, errors.Wrapf(ErrCannotInferGridSize, "range [%g … %g]", origin, origin+span)
}
