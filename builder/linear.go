// SPDX-License-Identifier: MIT

package builder

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"

	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// maxGridLength bounds the number of cells of a grid.
const maxGridLength = 1 << 30

// ControlPoint is one (source → target) correspondence.
type ControlPoint struct {
	Source []float64
	Target []float64
}

// LinearTransformBuilder fits an affine transform from source to target
// control points by least squares.
type LinearTransformBuilder struct {
	gridSize   []int       // nil for scattered points
	gridLength int         // product of gridSize
	sources    [][]float64 // scattered only: one slice per source dimension
	targets    [][]float64 // one slice per target dimension; NaN marks a missing cell
	numPoints  int         // scattered only

	tries        []*projectedTry
	applied      *projectedTry
	linearizer   *Linearizer
	transform    transform.LinearTransform
	correlations []float64
	opts         options
}

// NewLinearTransformBuilder returns a builder for points on a grid of the
// given size, or for scattered points when gridSize is empty.
func NewLinearTransformBuilder(gridSize []int, opts ...Option) (*LinearTransformBuilder, error) {
	b := &LinearTransformBuilder{opts: gatherOptions(opts)}
	if len(gridSize) == 0 {
		return b, nil
	}
	length := 1
	for _, s := range gridSize {
		if s < 1 {
			return nil, errors.Wrapf(ErrInvalidArgument, "grid size %v", gridSize)
		}
		if length > maxGridLength/s {
			return nil, errors.Wrapf(ErrInvalidArgument, "grid size %v is too large", gridSize)
		}
		length *= s
	}
	b.gridSize = append([]int(nil), gridSize...)
	b.gridLength = length

	return b, nil
}

// IsGridded reports whether the builder was created with a grid size.
func (b *LinearTransformBuilder) IsGridded() bool { return b.gridSize != nil }

// GridSize returns a copy of the grid size, nil for scattered points.
func (b *LinearTransformBuilder) GridSize() []int { return append([]int(nil), b.gridSize...) }

// SourceDimensions returns the number of source dimensions, 0 before the first scattered point.
func (b *LinearTransformBuilder) SourceDimensions() int {
	if b.gridSize != nil {
		return len(b.gridSize)
	}

	return len(b.sources)
}

// TargetDimensions returns the number of target dimensions, 0 before the first point.
func (b *LinearTransformBuilder) TargetDimensions() int { return len(b.targets) }

func (b *LinearTransformBuilder) ensureModifiable() error {
	if b.transform != nil {
		return ErrUnmodifiable
	}

	return nil
}

// pointCount returns the number of points held by the target arrays.
func (b *LinearTransformBuilder) pointCount() int {
	if b.gridSize != nil {
		return b.gridLength
	}

	return b.numPoints
}

// allocate creates the target arrays on the first point.
func (b *LinearTransformBuilder) allocate(tgtDim int) error {
	if b.targets != nil {
		if tgtDim != len(b.targets) {
			return errors.Wrapf(ErrMismatchedDimension, "%d target ordinates, expected %d", tgtDim, len(b.targets))
		}
		return nil
	}
	if tgtDim == 0 {
		return errors.Wrap(ErrMismatchedDimension, "empty target")
	}
	capacity := b.gridLength
	if b.gridSize == nil {
		capacity = 16
	}
	b.targets = make([][]float64, tgtDim)
	for d := range b.targets {
		b.targets[d] = make([]float64, capacity)
		if b.gridSize != nil {
			for i := range b.targets[d] {
				b.targets[d][i] = math.NaN()
			}
		}
	}

	return nil
}

// flatIndex returns the grid cell index of source, dimension 0 varying
// fastest, or -1 when outside the grid.
func (b *LinearTransformBuilder) flatIndex(source []float64) int {
	idx, stride := 0, 1
	for d, size := range b.gridSize {
		v := source[d]
		i := int(v)
		if float64(i) != v || i < 0 || i >= size {
			return -1
		}
		idx += i * stride
		stride *= size
	}

	return idx
}

// search returns the index of a scattered point with the given source, or -1.
func (b *LinearTransformBuilder) search(source []float64) int {
	if len(source) != len(b.sources) {
		return -1
	}
next:
	for i := 0; i < b.numPoints; i++ {
		for d, s := range b.sources {
			if s[i] != source[d] {
				continue next
			}
		}
		return i
	}

	return -1
}

// SetControlPoint sets the target of the point at the given grid (or
// scattered) source coordinates. A scattered point with the same source
// replaces the previous target.
func (b *LinearTransformBuilder) SetControlPoint(source []int, target []float64) error {
	s := make([]float64, len(source))
	for i, v := range source {
		s[i] = float64(v)
	}

	return b.setPoint(s, target)
}

// SetControlPoints sets many points. Gridded builders require integer
// source coordinates inside the grid.
func (b *LinearTransformBuilder) SetControlPoints(points []ControlPoint) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	for i, p := range points {
		if err := b.setPoint(p.Source, p.Target); err != nil {
			return errors.Wrapf(err, "control point %d", i)
		}
	}

	return nil
}

func (b *LinearTransformBuilder) setPoint(source, target []float64) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	if b.gridSize != nil {
		if len(source) != len(b.gridSize) {
			return errors.Wrapf(ErrMismatchedDimension, "%d source ordinates for a %d-D grid", len(source), len(b.gridSize))
		}
		idx := b.flatIndex(source)
		if idx < 0 {
			return errors.Wrapf(ErrInvalidArgument, "source %v outside grid %v", source, b.gridSize)
		}
		if err := b.allocate(len(target)); err != nil {
			return err
		}
		for d, v := range target {
			b.targets[d][idx] = v
		}
		return nil
	}

	if b.sources == nil {
		if len(source) == 0 {
			return errors.Wrap(ErrMismatchedDimension, "empty source")
		}
		b.sources = make([][]float64, len(source))
	} else if len(source) != len(b.sources) {
		return errors.Wrapf(ErrMismatchedDimension, "%d source ordinates, expected %d", len(source), len(b.sources))
	}
	if err := b.allocate(len(target)); err != nil {
		return err
	}
	idx := b.search(source)
	if idx < 0 {
		idx = b.numPoints
		b.numPoints++
		for d := range b.sources {
			b.sources[d] = append(b.sources[d][:idx], source[d])
		}
		for d := range b.targets {
			if idx >= len(b.targets[d]) {
				b.targets[d] = append(b.targets[d], make([]float64, len(b.targets[d])+1)...)
			}
		}
	}
	for d, v := range target {
		b.targets[d][idx] = v
	}

	return nil
}

// SetControlPointsFromTransform fills every grid cell with gridToCRS applied
// to the cell indices.
func (b *LinearTransformBuilder) SetControlPointsFromTransform(gridToCRS transform.MathTransform) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	if b.gridSize == nil {
		return errors.Wrap(ErrInvalidArgument, "SetControlPointsFromTransform needs a gridded builder")
	}
	srcDim, tgtDim := len(b.gridSize), gridToCRS.TargetDimensions()
	if gridToCRS.SourceDimensions() != srcDim {
		return errors.Wrapf(ErrMismatchedDimension, "%d-D transform for a %d-D grid", gridToCRS.SourceDimensions(), srcDim)
	}
	if err := b.allocate(tgtDim); err != nil {
		return err
	}
	row := b.gridSize[0]
	src := make([]float64, row*srcDim)
	dst := make([]float64, row*tgtDim)
	for first := 0; first < b.gridLength; first += row {
		for x := 0; x < row; x++ {
			r := first + x
			for d, size := range b.gridSize {
				src[x*srcDim+d] = float64(r % size)
				r /= size
			}
		}
		if err := gridToCRS.Transform(src, dst, row); err != nil {
			return err
		}
		for x := 0; x < row; x++ {
			for d := 0; d < tgtDim; d++ {
				b.targets[d][first+x] = dst[x*tgtDim+d]
			}
		}
	}

	return nil
}

// ControlPoint returns the target of the given source, or nil when unknown.
// Missing grid cells yield NaN ordinates.
func (b *LinearTransformBuilder) ControlPoint(source []int) []float64 {
	if b.targets == nil {
		return nil
	}
	s := make([]float64, len(source))
	for i, v := range source {
		s[i] = float64(v)
	}
	idx := -1
	if b.gridSize != nil {
		if len(s) == len(b.gridSize) {
			idx = b.flatIndex(s)
		}
	} else {
		idx = b.search(s)
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(b.targets))
	for d := range b.targets {
		out[d] = b.targets[d][idx]
	}

	return out
}

// SourceEnvelope returns the bounds of the source points in their first two
// dimensions (cell indices for grids).
func (b *LinearTransformBuilder) SourceEnvelope() (orb.Bound, error) {
	if b.gridSize != nil {
		upper := orb.Point{float64(b.gridSize[0] - 1), 0}
		if len(b.gridSize) > 1 {
			upper[1] = float64(b.gridSize[1] - 1)
		}
		return orb.Bound{Min: orb.Point{0, 0}, Max: upper}, nil
	}

	return envelope(b.sources, b.numPoints)
}

// TargetEnvelope returns the bounds of the target points in their first two
// dimensions, ignoring missing cells.
func (b *LinearTransformBuilder) TargetEnvelope() (orb.Bound, error) {
	return envelope(b.targets, b.pointCount())
}

func envelope(arrays [][]float64, n int) (orb.Bound, error) {
	if len(arrays) == 0 || n == 0 {
		return orb.Bound{}, errors.Wrap(ErrMissingValues, "no point")
	}
	var bound orb.Bound
	found := false
	for i := 0; i < n; i++ {
		p := orb.Point{arrays[0][i], 0}
		if len(arrays) > 1 {
			p[1] = arrays[1][i]
		}
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			continue
		}
		if !found {
			bound, found = orb.Bound{Min: p, Max: p}, true
			continue
		}
		bound = bound.Extend(p)
	}
	if !found {
		return orb.Bound{}, errors.Wrap(ErrMissingValues, "no point")
	}

	return bound, nil
}

// AddLinearizers registers candidate projections applied to the target
// dimensions projToGrid (all of them, in order, when empty) before fitting.
// compensate tells a LocalizationGridBuilder to append the inverse of the
// selected projection to its result.
func (b *LinearTransformBuilder) AddLinearizers(projections []NamedTransform, compensate bool, projToGrid ...int) error {
	if err := b.ensureModifiable(); err != nil {
		return err
	}
	tgtDim := b.TargetDimensions()
	if tgtDim == 0 {
		return errors.Wrap(ErrMismatchedDimension, "linearizers need control points first")
	}
	if len(projToGrid) == 0 {
		projToGrid = make([]int, tgtDim)
		for i := range projToGrid {
			projToGrid[i] = i
		}
	} else {
		seen := make([]bool, tgtDim)
		for _, d := range projToGrid {
			if d < 0 || d >= tgtDim {
				return errors.Wrapf(ErrInvalidArgument, "target dimension %d out of [0,%d)", d, tgtDim)
			}
			if seen[d] {
				return errors.Wrapf(ErrInvalidArgument, "duplicated target dimension %d", d)
			}
			seen[d] = true
		}
		projToGrid = append([]int(nil), projToGrid...)
	}
	for _, p := range projections {
		if p.Transform == nil {
			return errors.Wrapf(ErrInvalidArgument, "linearizer %q is nil", p.Name)
		}
		if p.Transform.SourceDimensions() != len(projToGrid) || p.Transform.TargetDimensions() != len(projToGrid) {
			return errors.Wrapf(ErrMismatchedDimension, "linearizer %q is %d→%d, expected %d→%d", p.Name,
				p.Transform.SourceDimensions(), p.Transform.TargetDimensions(), len(projToGrid), len(projToGrid))
		}
	}
	for _, p := range projections {
		b.tries = append(b.tries, newProjectedTry(p.Name, p.Transform, projToGrid, tgtDim, compensate))
	}

	return nil
}

// fit solves the least-squares system of the current sources for targets.
func (b *LinearTransformBuilder) fit(targets [][]float64) (*matrix.Dense, []float64, error) {
	n := b.pointCount()
	if n == 0 || targets == nil {
		return nil, nil, errors.Wrap(ErrMissingValues, "no control point")
	}
	trimmed := make([][]float64, len(targets))
	for d, t := range targets {
		trimmed[d] = t[:n]
	}
	if b.gridSize != nil {
		return fitAffine(gridDesign(b.gridSize, n), trimmed)
	}

	return fitAffine(scatterDesign(b.sources, n), trimmed)
}

// Create fits the affine transform, selecting a linearizer first when some
// were registered. The result is cached; the builder is frozen afterwards.
//
// Implementation:
//   - Stage 1: fit the raw targets.
//   - Stage 2: for every candidate in registration order, project the
//     targets it covers (identity candidates reuse the raw fit), fit the
//     projected dimensions only and splice them into the raw results.
//   - Stage 3: keep the candidate with the best worst-dimension correlation,
//     NaN last, the first registered on ties; replace the targets by their
//     projection.
//   - Stage 4: freeze.
func (b *LinearTransformBuilder) Create() (transform.LinearTransform, error) {
	if b.transform != nil {
		return b.transform, nil
	}
	m, corr, err := b.fit(b.targets)
	if err != nil {
		return nil, err
	}
	if len(b.tries) > 0 {
		if m, corr, err = b.selectLinearizer(m, corr); err != nil {
			return nil, err
		}
	}
	lt, err := transform.NewLinear(m)
	if err != nil {
		return nil, errors.Wrap(err, "create")
	}
	b.transform = lt
	b.correlations = corr

	return lt, nil
}

func (b *LinearTransformBuilder) selectLinearizer(rawM *matrix.Dense, rawCorr []float64) (*matrix.Dense, []float64, error) {
	var (
		pool       = &arrayPool{}
		n          = b.pointCount()
		best       *projectedTry
		bestArrays [][]float64
		bestM      *matrix.Dense
		bestCorr   []float64
	)
	for _, t := range b.tries {
		var (
			arrays [][]float64
			m      = rawM
			corr   = rawCorr
		)
		if !t.projection.IsIdentity() {
			if arrays = t.transform(b.targets, n, pool); arrays == nil {
				b.opts.logger.Debug("linearizer rejected", "name", t.name, "error", t.err)
				continue
			}
			subM, subCorr, err := b.fit(arrays)
			if err != nil {
				t.stash(err)
				pool.put(arrays...)
				continue
			}
			m = t.replaceRows(rawM, subM)
			corr = t.replaceValues(rawCorr, subCorr)
		}
		t.correlation = tryScore(corr)
		b.opts.logger.Debug("linearizer evaluated", "name", t.name, "correlation", t.correlation)
		if best == nil || betterScore(t.correlation, best.correlation) {
			pool.put(bestArrays...)
			best, bestArrays, bestM, bestCorr = t, arrays, m, corr
		} else {
			pool.put(arrays...)
		}
	}
	if best == nil {
		return nil, nil, errors.WithSecondaryError(ErrLocalizationGrid, aggregateError(b.tries))
	}
	if bestArrays != nil {
		b.targets = best.replaceArrays(b.targets, bestArrays)
	}
	proj, err := best.fullProjection()
	if err != nil {
		return nil, nil, errors.WithSecondaryError(ErrLocalizationGrid, err)
	}
	b.applied = best
	b.linearizer = &Linearizer{Name: best.name, Projection: proj, Compensate: best.compensate, Correlation: best.correlation}
	b.opts.logger.Debug("linearizer selected", "name", best.name, "correlation", best.correlation)

	return bestM, bestCorr, nil
}

// Correlation returns a copy of the per-target-dimension correlation
// coefficients, nil before Create.
func (b *LinearTransformBuilder) Correlation() []float64 {
	if b.correlations == nil {
		return nil
	}

	return append([]float64(nil), b.correlations...)
}

// AppliedLinearizer returns the linearizer selected by Create, or nil.
func (b *LinearTransformBuilder) AppliedLinearizer() *Linearizer {
	if b.linearizer == nil {
		return nil
	}
	l := *b.linearizer

	return &l
}

// ResolveWraparoundAxis removes the discontinuities of a cyclic target
// dimension (longitudes crossing the anti-meridian) by walking the grid in
// direction and shifting every jump larger than period/2 by whole periods.
// It returns the range of the corrected values.
//
// Implementation:
//   - Stage 1: walk every line along direction, comparing each value with
//     the previous one (the first value of a line with the first value of the
//     previous line) and unwrapping jumps.
//   - Stage 2: if values moved, shift all of them by the number of periods
//     giving the best overlap with the original range ([-period, period]
//     when the original range was wider than one period).
func (b *LinearTransformBuilder) ResolveWraparoundAxis(dimension, direction int, period float64) (float64, float64, error) {
	if err := b.ensureModifiable(); err != nil {
		return 0, 0, err
	}
	if b.gridSize == nil {
		return 0, 0, errors.Wrap(ErrInvalidArgument, "wraparound resolution needs a gridded builder")
	}
	if dimension < 0 || dimension >= len(b.targets) || direction < 0 || direction >= len(b.gridSize) {
		return 0, 0, errors.Wrapf(ErrInvalidArgument, "dimension %d, direction %d", dimension, direction)
	}
	if !(period > 0) || math.IsInf(period, 0) {
		return 0, 0, errors.Wrapf(ErrInvalidArgument, "period %g", period)
	}
	coords := b.targets[dimension]
	stride := 1
	for i := 0; i < direction; i++ {
		stride *= b.gridSize[i]
	}
	page := stride * b.gridSize[direction]
	threshold := period / 2
	minValue, maxValue := math.Inf(1), math.Inf(-1)
	minAfter, maxAfter := math.Inf(1), math.Inf(-1)
	previous := coords[0]
	for x := 0; x < stride; x++ {
		if x > 0 {
			previous = coords[x-1]
		}
		for y := 0; y < b.gridLength; y += page {
			stop := y + page
			for i := x + y; i < stop; i += stride {
				value := coords[i]
				if math.IsNaN(value) {
					continue
				}
				minValue, maxValue = math.Min(minValue, value), math.Max(maxValue, value)
				if delta := value - previous; math.Abs(delta) > threshold {
					value -= math.RoundToEven(delta/period) * period
					coords[i] = value
				}
				previous = value
				minAfter, maxAfter = math.Min(minAfter, value), math.Max(maxAfter, value)
			}
			previous = coords[x+y]
		}
	}

	if minAfter > maxAfter {
		return 0, 0, errors.Wrapf(ErrMissingValues, "dimension %d", dimension)
	}
	shift := 0.0
	if maxValue-minValue > period {
		minValue, maxValue = -period, period
	}
	dMin, dMax := minValue-minAfter, maxValue-maxAfter
	if dMin != 0 || dMax != 0 {
		intersection := 0.0
		minCycles := math.Floor(math.Min(dMin, dMax) / period)
		maxCycles := math.Ceil(math.Max(dMin, dMax) / period)
		for cycles := minCycles; cycles <= maxCycles; cycles++ {
			s := cycles * period
			if p := math.Min(maxValue, maxAfter+s) - math.Max(minValue, minAfter+s); p > intersection {
				intersection, shift = p, s
			}
		}
		if shift != 0 {
			for i := range coords[:b.gridLength] {
				coords[i] += shift
			}
		}
	}

	return minAfter + shift, maxAfter + shift, nil
}

// String summarizes points, ranked linearizers and the fitted matrix.
func (b *LinearTransformBuilder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "LinearTransformBuilder[%d points, %d→%d]\n", b.pointCount(), b.SourceDimensions(), b.TargetDimensions())
	if len(b.tries) > 0 {
		sb.WriteString("Linearizers:\n")
		for _, t := range rankTries(b.tries) {
			mark := " "
			if t == b.applied {
				mark = "*"
			}
			fmt.Fprintf(&sb, " %s %-24s %.6f\n", mark, t.name, t.correlation)
		}
	}
	if b.transform != nil {
		sb.WriteString(b.transform.Matrix().String())
		fmt.Fprintf(&sb, "Correlation: %v\n", b.correlations)
	}

	return sb.String()
}
