// SPDX-License-Identifier: MIT

package builder

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// LocalizationGridBuilder creates a transform from a 2-D grid of
// (cell → target coordinate) control points.
type LocalizationGridBuilder struct {
	linear       *LinearTransformBuilder
	sourceToGrid transform.LinearTransform
	precision    float64   // source units; 0 when unset
	periods      []float64 // target units per dimension; nil when no wraparound axis
	transform    transform.MathTransform
	opts         options
}

// NewLocalizationGridBuilder returns a builder for a width×height grid whose
// source coordinates are the cell indices.
func NewLocalizationGridBuilder(width, height int, opts ...Option) (*LocalizationGridBuilder, error) {
	linear, err := NewLinearTransformBuilder([]int{width, height}, opts...)
	if err != nil {
		return nil, err
	}

	return &LocalizationGridBuilder{
		linear:       linear,
		sourceToGrid: transform.Identity(gridDimension),
		opts:         linear.opts,
	}, nil
}

// NewLocalizationGridBuilderFromVectors returns a builder whose grid size
// and source-to-grid conversion are inferred from all possible source x and
// y values. The two vectors need not have the same length.
func NewLocalizationGridBuilderFromVectors(sourceX, sourceY []float64, opts ...Option) (*LocalizationGridBuilder, error) {
	o := gatherOptions(opts)
	width, height, sourceToGrid, err := inferGrid(sourceX, sourceY, o.epsilon)
	if err != nil {
		return nil, err
	}
	b, err := NewLocalizationGridBuilder(width, height, opts...)
	if err != nil {
		return nil, err
	}
	b.sourceToGrid = sourceToGrid

	return b, nil
}

// NewLocalizationGridBuilderFrom adopts a 2-D LinearTransformBuilder. A
// gridded builder is used as-is; the grid of a scattered builder is inferred
// from its current points, which are copied along with its linearizers.
func NewLocalizationGridBuilderFrom(linear *LinearTransformBuilder, opts ...Option) (*LocalizationGridBuilder, error) {
	if linear == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil builder")
	}
	if linear.SourceDimensions() != gridDimension {
		return nil, errors.Wrapf(ErrMismatchedDimension, "%d source dimensions, expected %d",
			linear.SourceDimensions(), gridDimension)
	}
	if linear.IsGridded() {
		o := linear.opts
		for _, opt := range opts {
			if opt != nil {
				opt(&o)
			}
		}
		return &LocalizationGridBuilder{linear: linear, sourceToGrid: transform.Identity(gridDimension), opts: o}, nil
	}
	if err := linear.ensureModifiable(); err != nil {
		return nil, err
	}
	n := linear.numPoints
	o := gatherOptions(opts)
	width, height, sourceToGrid, err := inferGrid(linear.sources[0][:n], linear.sources[1][:n], o.epsilon)
	if err != nil {
		return nil, err
	}
	b, err := NewLocalizationGridBuilder(width, height, opts...)
	if err != nil {
		return nil, err
	}
	b.sourceToGrid = sourceToGrid
	src := make([]float64, gridDimension)
	dst := make([]float64, gridDimension)
	target := make([]float64, linear.TargetDimensions())
	for i := 0; i < n; i++ {
		src[0], src[1] = linear.sources[0][i], linear.sources[1][i]
		if err := sourceToGrid.Transform(src, dst, 1); err != nil {
			return nil, err
		}
		dst[0], dst[1] = math.Round(dst[0]), math.Round(dst[1])
		for d := range target {
			target[d] = linear.targets[d][i]
		}
		if err := b.linear.setPoint(dst, target); err != nil {
			return nil, err
		}
	}
	for _, t := range linear.tries {
		b.linear.tries = append(b.linear.tries, t.clone())
	}

	return b, nil
}

// inferGrid infers the grid size along x and y and the source-to-grid conversion.
func inferGrid(sourceX, sourceY []float64, eps float64) (int, int, transform.LinearTransform, error) {
	width, sx, ox, err := inferGridSize(sourceX, eps)
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "x")
	}
	height, sy, oy, err := inferGridSize(sourceY, eps)
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "y")
	}
	scale, err := matrix.Scale([]float64{sx, sy})
	if err != nil {
		return 0, 0, nil, err
	}
	offset, err := matrix.Translation([]float64{ox, oy})
	if err != nil {
		return 0, 0, nil, err
	}
	fromGrid, err := matrix.Mul(offset, scale)
	if err != nil {
		return 0, 0, nil, err
	}
	toGrid, err := transform.MustLinear(fromGrid).Inverse()
	if err != nil {
		return 0, 0, nil, errors.WithSecondaryError(ErrCannotInferGridSize, err)
	}

	return width, height, toGrid.(transform.LinearTransform), nil
}

func (b *LocalizationGridBuilder) ensureModifiable() error {
	if b.transform != nil {
		return ErrUnmodifiable
	}

	return nil
}

// Width returns the number of grid columns.
func (b *LocalizationGridBuilder) Width() int { return b.linear.gridSize[0] }

// Height returns the number of grid rows.
func (b *LocalizationGridBuilder) Height() int { return b.linear.gridSize[1] }

// SetDesiredPrecision sets the desired precision of the inverse transform,
// in source units.
func (b *LocalizationGridBuilder) SetDesiredPrecision(precision float64) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	if !(precision > 0) || math.IsInf(precision, 0) {
		return errors.Wrapf(ErrInvalidArgument, "precision %g", precision)
	}
	b.precision = precision

	return nil
}

// DesiredPrecision returns the precision set by SetDesiredPrecision, 0 when unset.
func (b *LocalizationGridBuilder) DesiredPrecision() float64 { return b.precision }

// SetSourceToGrid sets the conversion from source coordinates to grid indices.
func (b *LocalizationGridBuilder) SetSourceToGrid(sourceToGrid transform.LinearTransform) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	if sourceToGrid == nil {
		return errors.Wrap(ErrInvalidArgument, "nil source to grid")
	}
	if sourceToGrid.SourceDimensions() != gridDimension || sourceToGrid.TargetDimensions() != gridDimension {
		return errors.Wrapf(ErrMismatchedDimension, "source to grid is %d→%d",
			sourceToGrid.SourceDimensions(), sourceToGrid.TargetDimensions())
	}
	if _, err := sourceToGrid.Inverse(); err != nil {
		return errors.WithSecondaryError(errors.Wrap(ErrInvalidArgument, "source to grid"), err)
	}
	b.sourceToGrid = sourceToGrid

	return nil
}

// SourceToGrid returns the conversion from source coordinates to grid indices.
func (b *LocalizationGridBuilder) SourceToGrid() transform.LinearTransform { return b.sourceToGrid }

// SetControlPoint sets the target coordinates of cell (gridX, gridY).
func (b *LocalizationGridBuilder) SetControlPoint(gridX, gridY int, target ...float64) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}

	return b.linear.SetControlPoint([]int{gridX, gridY}, target)
}

// SetControlPoints sets every cell at once: columns[d] holds the values of
// target dimension d for all cells, x varying fastest.
func (b *LocalizationGridBuilder) SetControlPoints(columns ...[]float64) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	if err := b.linear.ensureModifiable(); err != nil {
		return err
	}
	n := b.linear.gridLength
	for d, c := range columns {
		if len(c) != n {
			return errors.Wrapf(ErrMismatchedDimension, "column %d holds %d values for %d cells", d, len(c), n)
		}
	}
	if err := b.linear.allocate(len(columns)); err != nil {
		return err
	}
	for d, c := range columns {
		copy(b.linear.targets[d], c)
	}

	return nil
}

// ControlPoint returns the target coordinates of cell (gridX, gridY), nil
// when none was set.
func (b *LocalizationGridBuilder) ControlPoint(gridX, gridY int) []float64 {
	return b.linear.ControlPoint([]int{gridX, gridY})
}

// Row returns the values of target dimension for every cell of row.
func (b *LocalizationGridBuilder) Row(dimension, row int) ([]float64, error) {
	if err := b.checkDimension(dimension); err != nil {
		return nil, err
	}
	if row < 0 || row >= b.Height() {
		return nil, errors.Wrapf(ErrInvalidArgument, "row %d of %d", row, b.Height())
	}
	w := b.Width()

	return append([]float64(nil), b.linear.targets[dimension][row*w:(row+1)*w]...), nil
}

// Column returns the values of target dimension for every cell of column.
func (b *LocalizationGridBuilder) Column(dimension, column int) ([]float64, error) {
	if err := b.checkDimension(dimension); err != nil {
		return nil, err
	}
	if column < 0 || column >= b.Width() {
		return nil, errors.Wrapf(ErrInvalidArgument, "column %d of %d", column, b.Width())
	}
	w, h := b.Width(), b.Height()
	out := make([]float64, h)
	for y := range out {
		out[y] = b.linear.targets[dimension][y*w+column]
	}

	return out, nil
}

func (b *LocalizationGridBuilder) checkDimension(dimension int) error {
	if dimension < 0 || dimension >= b.linear.TargetDimensions() {
		return errors.Wrapf(ErrInvalidArgument, "target dimension %d of %d", dimension, b.linear.TargetDimensions())
	}

	return nil
}

// SourceEnvelope returns the source coordinates covered by the grid: the
// cell centers, or the whole cells (half a cell more on each side) when
// fullArea is true.
func (b *LocalizationGridBuilder) SourceEnvelope(fullArea bool) (orb.Bound, error) {
	lo, hiX, hiY := 0.0, float64(b.Width()-1), float64(b.Height()-1)
	if fullArea {
		lo, hiX, hiY = -0.5, hiX+0.5, hiY+0.5
	}
	toSource, err := b.sourceToGrid.Inverse()
	if err != nil {
		return orb.Bound{}, err
	}
	corners := []float64{lo, lo, hiX, lo, lo, hiY, hiX, hiY}
	if err := toSource.Transform(corners, corners, 4); err != nil {
		return orb.Bound{}, err
	}
	bound := orb.Point{corners[0], corners[1]}.Bound()
	for i := 1; i < 4; i++ {
		bound = bound.Extend(orb.Point{corners[2*i], corners[2*i+1]})
	}

	return bound, nil
}

// AddLinearizers registers candidate projections; see LinearTransformBuilder.AddLinearizers.
func (b *LocalizationGridBuilder) AddLinearizers(projections []NamedTransform, compensate bool, projToGrid ...int) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}

	return b.linear.AddLinearizers(projections, compensate, projToGrid...)
}

// ResolveWraparoundAxis unwraps a cyclic target dimension along a grid
// direction and records its period for the inverse transform.
func (b *LocalizationGridBuilder) ResolveWraparoundAxis(dimension, direction int, period float64) (float64, float64, error) {
	if err := b.ensureModifiable(); err != nil {
		return 0, 0, err
	}
	lo, hi, err := b.linear.ResolveWraparoundAxis(dimension, direction, period)
	if err != nil {
		return 0, 0, err
	}
	if b.periods == nil {
		b.periods = make([]float64, b.linear.TargetDimensions())
	}
	b.periods[dimension] = period

	return lo, hi, nil
}

// Linearizer returns the linearizer applied by Create, or nil. When
// ifNotCompensated is true, a compensated linearizer is not returned.
func (b *LocalizationGridBuilder) Linearizer(ifNotCompensated bool) *Linearizer {
	l := b.linear.AppliedLinearizer()
	if l == nil || (ifNotCompensated && l.Compensate) {
		return nil
	}

	return l
}

// Correlation returns the correlation of each target dimension, nil before Create.
func (b *LocalizationGridBuilder) Correlation() []float64 { return b.linear.Correlation() }

// gridPrecision converts the desired precision to cell units through the
// Jacobian of sourceToGrid: a displacement of precision along each source
// axis, with a zero homogeneous term, is mapped and the largest magnitude kept.
func (b *LocalizationGridBuilder) gridPrecision() float64 {
	if b.precision == 0 {
		return b.opts.precision
	}
	m := b.sourceToGrid.Matrix()
	result := 0.0
	step := make([]float64, gridDimension+1)
	for j := 0; j < gridDimension; j++ {
		clear(step)
		step[j] = b.precision
		v, err := matrix.MulVec(m, step)
		if err != nil {
			return b.opts.precision
		}
		result = math.Max(result, floats.Norm(v[:gridDimension], 2))
	}

	return result
}

// Create returns the transform from source coordinates to target
// coordinates. The result is cached and the builder frozen.
//
// Implementation:
//   - Stage 1: affine fit, with linearizer selection.
//   - Stage 2: when every correlation is exactly 1, the result is
//     sourceToGrid then the affine fit.
//   - Stage 3: otherwise compute residuals (cell position minus the
//     position given by the inverse fit); if every correlation reaches the
//     linearity threshold and all residuals are within the desired
//     precision, the grid is linear after all.
//   - Stage 4: otherwise sourceToGrid, then the residual grid interpolated
//     bilinearly, then the affine fit.
//   - Stage 5: append the inverse of a compensated linearizer.
func (b *LocalizationGridBuilder) Create() (transform.MathTransform, error) {
	if b.transform != nil {
		return b.transform, nil
	}
	gridToCoord, err := b.linear.Create()
	if err != nil {
		return nil, err
	}
	precision := b.gridPrecision()
	step := transform.MathTransform(gridToCoord)
	if !isExact(b.linear.correlations) {
		grid, err := b.residuals(gridToCoord, precision)
		if err != nil {
			return nil, err
		}
		if grid != nil {
			interp, err := newInterpolated(grid, gridToCoord, b.opts.maxIterations)
			if err != nil {
				return nil, err
			}
			step = interp
		} else {
			b.opts.logger.Debug("grid residuals within precision", "precision", precision)
		}
	}
	result, err := transform.Concatenate(b.sourceToGrid, step)
	if err != nil {
		return nil, errors.WithSecondaryError(ErrLocalizationGrid, err)
	}
	if l := b.linear.linearizer; l != nil && l.Compensate {
		inverse, err := l.Projection.Inverse()
		if err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(ErrNonInvertibleLinearizer, "%q", l.Name), err)
		}
		if result, err = transform.Concatenate(result, inverse); err != nil {
			return nil, errors.WithSecondaryError(ErrLocalizationGrid, err)
		}
	}
	b.transform = result
	b.opts.logger.Debug("localization grid created",
		"width", b.Width(), "height", b.Height(), "linear", step == transform.MathTransform(gridToCoord))

	return result, nil
}

func isExact(correlations []float64) bool {
	for _, c := range correlations {
		if c != 1 {
			return false
		}
	}

	return true
}

// reachesThreshold reports whether no correlation is below threshold; NaN is.
func reachesThreshold(correlations []float64, threshold float64) bool {
	for _, c := range correlations {
		if !(c >= threshold) {
			return false
		}
	}

	return true
}

// residuals returns the residual grid, or nil when the fit is linear enough
// and every residual is within precision.
func (b *LocalizationGridBuilder) residuals(gridToCoord transform.LinearTransform, precision float64) (*ResidualGrid, error) {
	if d := b.linear.TargetDimensions(); d != gridDimension {
		return nil, errors.Wrapf(ErrMismatchedDimension, "non-linear grids need %d target dimensions, got %d", gridDimension, d)
	}
	coordToGrid, err := gridToCoord.Inverse()
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrLocalizationGrid, "affine fit"), err)
	}
	w, h := b.Width(), b.Height()
	n := w * h
	buffer := make([]float64, n*gridDimension)
	tx, ty := b.linear.targets[0], b.linear.targets[1]
	for i := 0; i < n; i++ {
		buffer[2*i], buffer[2*i+1] = tx[i], ty[i]
	}
	if err := coordToGrid.Transform(buffer, buffer, n); err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrLocalizationGrid, "residuals"), err)
	}
	offsets := make([]float32, n*gridDimension)
	linear := reachesThreshold(b.linear.correlations, b.opts.threshold)
	if !linear {
		b.opts.logger.Debug("grid correlation below linearity threshold", "threshold", b.opts.threshold)
	}
	for i := 0; i < n; i++ {
		dx := float64(i%w) - buffer[2*i]
		dy := float64(i/w) - buffer[2*i+1]
		if !(math.Abs(dx) <= precision && math.Abs(dy) <= precision) {
			linear = false
		}
		offsets[2*i], offsets[2*i+1] = float32(dx), float32(dy)
	}
	if linear {
		return nil, nil
	}
	grid := &ResidualGrid{width: w, height: h, offsets: offsets, accuracy: precision}
	if b.periods != nil && b.linear.linearizer == nil {
		grid.periods = append([]float64(nil), b.periods...)
	}

	return grid, nil
}

// ErrorStatistics summarizes the errors of one dimension over all cells.
type ErrorStatistics struct {
	Label string
	Count int
	Min   float64
	Max   float64
	Mean  float64
	RMS   float64
}

func (s ErrorStatistics) String() string {
	return fmt.Sprintf("%-4s count=%d min=%.3g max=%.3g mean=%.3g rms=%.3g", s.Label, s.Count, s.Min, s.Max, s.Mean, s.RMS)
}

func errorLabel(dimension int) string {
	switch dimension {
	case 0:
		return "Δx"
	case 1:
		return "Δy"
	case 2:
		return "Δz"
	default:
		return fmt.Sprintf("Δz%d", dimension-1)
	}
}

func summarize(label string, values []float64) ErrorStatistics {
	s := ErrorStatistics{Label: label, Count: len(values)}
	if len(values) == 0 {
		s.Min, s.Max, s.Mean, s.RMS = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Mean = stat.Mean(values, nil)
	s.RMS = floats.Norm(values, 2) / math.Sqrt(float64(len(values)))

	return s
}

// Errors returns the error statistics of every target dimension then every
// grid dimension, evaluated at every cell. With linear true the affine fit
// alone is evaluated in the linearized space; otherwise the created
// transform is evaluated from source coordinates.
func (b *LocalizationGridBuilder) Errors(linear bool) ([]ErrorStatistics, error) {
	if b.transform == nil {
		return nil, ErrNotCreated
	}
	w, h := b.Width(), b.Height()
	n := w * h
	tgtDim := b.linear.TargetDimensions()

	grid := make([]float64, n*gridDimension)
	for i := 0; i < n; i++ {
		grid[2*i], grid[2*i+1] = float64(i%w), float64(i/w)
	}
	expected := make([]float64, n*tgtDim)
	for i := 0; i < n; i++ {
		for d := 0; d < tgtDim; d++ {
			expected[i*tgtDim+d] = b.linear.targets[d][i]
		}
	}

	var forward transform.MathTransform = b.linear.transform
	input := grid
	if !linear {
		forward = b.transform
		toSource, err := b.sourceToGrid.Inverse()
		if err != nil {
			return nil, err
		}
		input = make([]float64, len(grid))
		if err := toSource.Transform(grid, input, n); err != nil {
			return nil, err
		}
		if l := b.linear.linearizer; l != nil && l.Compensate {
			inverse, err := l.Projection.Inverse()
			if err != nil {
				return nil, errors.WithSecondaryError(ErrNonInvertibleLinearizer, err)
			}
			if err := inverse.Transform(expected, expected, n); err != nil {
				return nil, err
			}
		}
	}

	actual := make([]float64, n*tgtDim)
	if err := forward.Transform(input, actual, n); err != nil {
		return nil, err
	}
	stats := make([]ErrorStatistics, 0, tgtDim+gridDimension)
	values := make([]float64, n)
	for d := 0; d < tgtDim; d++ {
		for i := range values {
			values[i] = actual[i*tgtDim+d] - expected[i*tgtDim+d]
		}
		stats = append(stats, summarize(errorLabel(d), values))
	}

	inverse, err := forward.Inverse()
	if err != nil {
		return stats, nil
	}
	back := make([]float64, n*gridDimension)
	if err := inverse.Transform(expected, back, n); err != nil {
		return stats, nil
	}
	if !linear {
		if err := b.sourceToGrid.Transform(back, back, n); err != nil {
			return nil, err
		}
	}
	for d, label := range []string{"Δi", "Δj"} {
		for i := range values {
			values[i] = back[i*gridDimension+d] - grid[i*gridDimension+d]
		}
		stats = append(stats, summarize(label, values))
	}

	return stats, nil
}

// String summarizes the grid, the linear fit and, once created, the errors.
func (b *LocalizationGridBuilder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "LocalizationGridBuilder[%d×%d]\n", b.Width(), b.Height())
	sb.WriteString(b.linear.String())
	if stats, err := b.Errors(false); err == nil {
		for _, s := range stats {
			sb.WriteString(s.String())
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
