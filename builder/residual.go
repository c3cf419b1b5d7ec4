// SPDX-License-Identifier: MIT

package builder

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/transform"
)

// gridDimension is the number of dimensions of a localization grid.
const gridDimension = 2

// ResidualGrid is a field of (dx, dy) corrections in grid cell units, one
// per cell: the cell position minus the position computed by the inverse of
// the affine fit. Values are interpolated bilinearly between cells.
type ResidualGrid struct {
	width, height int
	offsets       []float32 // (dx, dy) interleaved, x varying fastest
	accuracy      float64   // grid cell units
	periods       []float64 // per target dimension, 0 when not cyclic; nil when none
}

// Width returns the number of columns.
func (r *ResidualGrid) Width() int { return r.width }

// Height returns the number of rows.
func (r *ResidualGrid) Height() int { return r.height }

// Accuracy returns the precision the grid was built for, in cell units.
func (r *ResidualGrid) Accuracy() float64 { return r.accuracy }

// Periods returns the wraparound period of each target dimension, or nil.
func (r *ResidualGrid) Periods() []float64 {
	if r.periods == nil {
		return nil
	}

	return append([]float64(nil), r.periods...)
}

// Offset returns the stored residual of cell (x, y).
func (r *ResidualGrid) Offset(x, y int) (dx, dy float64) {
	i := 2 * (y*r.width + x)

	return float64(r.offsets[i]), float64(r.offsets[i+1])
}

// cellAndFraction returns the interpolation cell along one axis, clamped so
// that points outside the grid use the border cells.
func cellAndFraction(v float64, size int) (int, float64) {
	if size < 2 {
		return 0, 0
	}
	i := int(math.Floor(v))
	i = max(0, min(size-2, i))
	f := math.Max(0, math.Min(1, v-float64(i)))

	return i, f
}

// Interpolate returns the bilinearly interpolated residual at grid
// coordinates (gx, gy).
func (r *ResidualGrid) Interpolate(gx, gy float64) (dx, dy float64) {
	x, fx := cellAndFraction(gx, r.width)
	y, fy := cellAndFraction(gy, r.height)
	x1, y1 := min(x+1, r.width-1), min(y+1, r.height-1)
	dx00, dy00 := r.Offset(x, y)
	dx10, dy10 := r.Offset(x1, y)
	dx01, dy01 := r.Offset(x, y1)
	dx11, dy11 := r.Offset(x1, y1)
	lerp := func(a, b, f float64) float64 { return a + (b-a)*f }
	dx = lerp(lerp(dx00, dx10, fx), lerp(dx01, dx11, fx), fy)
	dy = lerp(lerp(dy00, dy10, fx), lerp(dy01, dy11, fx), fy)

	return dx, dy
}

// interpolated maps grid coordinates to target coordinates: the residual is
// subtracted from the grid coordinates, then the affine fit is applied.
type interpolated struct {
	grid          *ResidualGrid
	gridToCoord   transform.LinearTransform
	coordToGrid   transform.MathTransform
	center        []float64 // target coordinates of the grid center, for unwrapping
	maxIterations int
	inverse       *interpolatedInverse
}

var (
	_ transform.MathTransform = (*interpolated)(nil)
	_ transform.Equaler       = (*interpolated)(nil)
)

func newInterpolated(grid *ResidualGrid, gridToCoord transform.LinearTransform, maxIterations int) (*interpolated, error) {
	coordToGrid, err := gridToCoord.Inverse()
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrLocalizationGrid, "affine fit"), err)
	}
	center := []float64{float64(grid.width-1) / 2, float64(grid.height-1) / 2}
	if err := gridToCoord.Transform(center, center, 1); err != nil {
		return nil, errors.WithSecondaryError(ErrLocalizationGrid, err)
	}
	t := &interpolated{
		grid:          grid,
		gridToCoord:   gridToCoord,
		coordToGrid:   coordToGrid,
		center:        center,
		maxIterations: maxIterations,
	}
	t.inverse = &interpolatedInverse{forward: t}

	return t, nil
}

func (t *interpolated) SourceDimensions() int { return gridDimension }
func (t *interpolated) TargetDimensions() int { return gridDimension }
func (t *interpolated) IsIdentity() bool      { return false }

// Transform converts grid coordinates to target coordinates.
func (t *interpolated) Transform(src, dst []float64, numPts int) error {
	if len(src) < numPts*gridDimension || len(dst) < numPts*gridDimension {
		return errors.Wrapf(transform.ErrInvalidArgument, "buffers too short for %d points", numPts)
	}
	for i := 0; i < numPts; i++ {
		o := i * gridDimension
		gx, gy := src[o], src[o+1]
		dx, dy := t.grid.Interpolate(gx, gy)
		dst[o], dst[o+1] = gx-dx, gy-dy
	}

	return t.gridToCoord.Transform(dst[:numPts*gridDimension], dst, numPts)
}

func (t *interpolated) Inverse() (transform.MathTransform, error) { return t.inverse, nil }

// Equal compares residual grids and affine fits.
func (t *interpolated) Equal(other transform.MathTransform, tol float64) bool {
	o, ok := other.(*interpolated)
	if !ok {
		return false
	}
	if o.grid != t.grid {
		if o.grid.width != t.grid.width || o.grid.height != t.grid.height {
			return false
		}
		for i, v := range t.grid.offsets {
			if math.Abs(float64(v-o.grid.offsets[i])) > tol {
				return false
			}
		}
	}

	return transform.Equal(t.gridToCoord, o.gridToCoord, tol)
}

func (t *interpolated) String() string {
	return fmt.Sprintf("InterpolatedTransform[%d×%d]", t.grid.width, t.grid.height)
}

// interpolatedInverse maps target coordinates back to grid coordinates by
// fixed-point iteration.
type interpolatedInverse struct {
	forward *interpolated
}

var _ transform.MathTransform = (*interpolatedInverse)(nil)

func (t *interpolatedInverse) SourceDimensions() int { return gridDimension }
func (t *interpolatedInverse) TargetDimensions() int { return gridDimension }
func (t *interpolatedInverse) IsIdentity() bool      { return false }

func (t *interpolatedInverse) Inverse() (transform.MathTransform, error) { return t.forward, nil }

func (t *interpolatedInverse) String() string { return "Inverse " + t.forward.String() }

// Transform converts target coordinates to grid coordinates.
//
// Implementation:
//   - Stage 1: shift cyclic ordinates by whole periods toward the grid center.
//   - Stage 2: c = affine⁻¹(target), the grid position before correction.
//   - Stage 3: iterate g ← c + residual(g) from g = c until the step is
//     below the grid accuracy, at most maxIterations times.
func (t *interpolatedInverse) Transform(src, dst []float64, numPts int) error {
	f := t.forward
	if len(src) < numPts*gridDimension || len(dst) < numPts*gridDimension {
		return errors.Wrapf(transform.ErrInvalidArgument, "buffers too short for %d points", numPts)
	}
	if p := f.grid.periods; p != nil && numPts > 0 {
		if &src[0] != &dst[0] {
			copy(dst, src[:numPts*gridDimension])
			src = dst
		}
		for i := 0; i < numPts; i++ {
			for d := 0; d < gridDimension && d < len(p); d++ {
				if period := p[d]; period > 0 {
					v := &src[i*gridDimension+d]
					*v -= math.Round((*v-f.center[d])/period) * period
				}
			}
		}
	}
	if err := f.coordToGrid.Transform(src[:numPts*gridDimension], dst, numPts); err != nil {
		return err
	}
	tolerance := f.grid.accuracy
	for i := 0; i < numPts; i++ {
		o := i * gridDimension
		cx, cy := dst[o], dst[o+1]
		gx, gy := cx, cy
		converged := false
		for it := 0; it < f.maxIterations; it++ {
			dx, dy := f.grid.Interpolate(gx, gy)
			nx, ny := cx+dx, cy+dy
			step := math.Max(math.Abs(nx-gx), math.Abs(ny-gy))
			gx, gy = nx, ny
			if step <= tolerance {
				converged = true
				break
			}
		}
		if !converged {
			return errors.Wrapf(transform.ErrTransform, "no convergence after %d iterations for point %d", f.maxIterations, i)
		}
		dst[o], dst[o+1] = gx, gy
	}

	return nil
}
