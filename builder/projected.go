// SPDX-License-Identifier: MIT

package builder

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// NamedTransform is a candidate linearizer.
type NamedTransform struct {
	Name      string
	Transform transform.MathTransform
}

// Linearizer describes the projection selected by a builder.
type Linearizer struct {
	// Name of the candidate.
	Name string

	// Projection operates on all target dimensions; dimensions the candidate
	// did not cover pass through unchanged.
	Projection transform.MathTransform

	// Compensate asks the grid builder to append the inverse of Projection.
	Compensate bool

	// Correlation is the worst per-dimension correlation after projection.
	Correlation float64
}

// projectedTry is one candidate linearizer under evaluation.
type projectedTry struct {
	name        string
	projection  transform.MathTransform
	projToGrid  []int // target dimensions fed to projection, in order
	dimension   int   // total number of target dimensions
	compensate  bool
	correlation float64
	err         error
}

func newProjectedTry(name string, projection transform.MathTransform, projToGrid []int, dimension int, compensate bool) *projectedTry {
	return &projectedTry{
		name:        name,
		projection:  projection,
		projToGrid:  projToGrid,
		dimension:   dimension,
		compensate:  compensate,
		correlation: math.NaN(),
	}
}

// clone returns a fresh candidate with the same projection, without the
// correlation or errors of a previous evaluation.
func (t *projectedTry) clone() *projectedTry {
	return newProjectedTry(t.name, t.projection, append([]int(nil), t.projToGrid...), t.dimension, t.compensate)
}

// stash keeps the first error; later ones become secondary.
func (t *projectedTry) stash(err error) {
	if t.err == nil {
		t.err = err
		return
	}
	t.err = errors.WithSecondaryError(t.err, err)
}

// arrayPool recycles coordinate arrays between candidates.
type arrayPool struct {
	free [][]float64
}

func (p *arrayPool) get(n int) []float64 {
	for i := len(p.free) - 1; i >= 0; i-- {
		if a := p.free[i]; len(a) >= n {
			p.free = append(p.free[:i], p.free[i+1:]...)
			return a[:n]
		}
	}

	return make([]float64, n)
}

func (p *arrayPool) put(arrays ...[]float64) {
	for _, a := range arrays {
		if a != nil {
			p.free = append(p.free, a)
		}
	}
}

// transform projects the dimensions projToGrid of the first numPoints
// targets in batches of batchCapacity points. It returns one array per
// projected dimension, or nil when the projection fails or yields a
// non-finite value (the cause is stashed).
func (t *projectedTry) transform(targets [][]float64, numPoints int, pool *arrayPool) [][]float64 {
	dim := len(t.projToGrid)
	out := make([][]float64, dim)
	for k := range out {
		out[k] = pool.get(numPoints)
	}
	buffer := make([]float64, dim*min(batchCapacity, numPoints))
	for start := 0; start < numPoints; start += batchCapacity {
		count := min(batchCapacity, numPoints-start)
		for i := 0; i < count; i++ {
			for k, d := range t.projToGrid {
				buffer[i*dim+k] = targets[d][start+i]
			}
		}
		if err := t.projection.Transform(buffer, buffer, count); err != nil {
			t.stash(errors.Wrapf(err, "linearizer %q", t.name))
			pool.put(out...)
			return nil
		}
		for i := 0; i < count; i++ {
			for k := 0; k < dim; k++ {
				v := buffer[i*dim+k]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.stash(errors.Wrapf(ErrLocalizationGrid, "linearizer %q: non-finite value for point %d", t.name, start+i))
					pool.put(out...)
					return nil
				}
				out[k][start+i] = v
			}
		}
	}

	return out
}

// isAllDimensions reports whether the projection covers every target
// dimension in natural order.
func (t *projectedTry) isAllDimensions() bool {
	if len(t.projToGrid) != t.dimension {
		return false
	}
	for i, d := range t.projToGrid {
		if i != d {
			return false
		}
	}

	return true
}

// replaceArrays returns targets with the projected dimensions substituted.
func (t *projectedTry) replaceArrays(targets, projected [][]float64) [][]float64 {
	out := append([][]float64(nil), targets...)
	for k, d := range t.projToGrid {
		out[d] = projected[k]
	}

	return out
}

// replaceValues returns raw with the projected dimensions substituted.
func (t *projectedTry) replaceValues(raw, projected []float64) []float64 {
	out := append([]float64(nil), raw...)
	for k, d := range t.projToGrid {
		out[d] = projected[k]
	}

	return out
}

// replaceRows returns the raw affine matrix with the rows of the projected
// dimensions substituted by the rows of sub.
func (t *projectedTry) replaceRows(raw, sub *matrix.Dense) *matrix.Dense {
	out := raw.Clone().(*matrix.Dense)
	for k, d := range t.projToGrid {
		for j, v := range sub.Row(k) {
			_ = out.Set(d, j, v)
		}
	}

	return out
}

// fullProjection returns the projection acting on all target dimensions.
// Uncovered dimensions are moved after the covered ones, passed through,
// then moved back.
func (t *projectedTry) fullProjection() (transform.MathTransform, error) {
	if t.isAllDimensions() {
		return t.projection, nil
	}
	order := append([]int(nil), t.projToGrid...)
	covered := make([]bool, t.dimension)
	for _, d := range t.projToGrid {
		covered[d] = true
	}
	for d, c := range covered {
		if !c {
			order = append(order, d)
		}
	}
	m, err := matrix.CreateDimensionSelect(t.dimension, order)
	if err != nil {
		return nil, err
	}
	permute, err := transform.NewLinear(m)
	if err != nil {
		return nil, err
	}
	restore, err := permute.Inverse()
	if err != nil {
		return nil, err
	}
	pass, err := transform.PassThrough(0, t.projection, t.dimension-len(t.projToGrid))
	if err != nil {
		return nil, err
	}

	return transform.ConcatenateAll(permute, pass, restore)
}

// tryScore is the worst correlation over the dimensions; NaN when any
// dimension is undefined.
func tryScore(correlations []float64) float64 {
	if len(correlations) == 0 {
		return math.NaN()
	}
	score := math.Inf(1)
	for _, c := range correlations {
		if math.IsNaN(c) {
			return math.NaN()
		}
		score = math.Min(score, math.Abs(c))
	}

	return score
}

// betterScore reports whether a strictly beats b, NaN ranking last.
func betterScore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}

	return math.IsNaN(b) || a > b
}

// rankTries returns the candidates sorted by decreasing score, NaN last,
// registration order on ties.
func rankTries(tries []*projectedTry) []*projectedTry {
	out := append([]*projectedTry(nil), tries...)
	sort.SliceStable(out, func(i, j int) bool {
		return betterScore(out[i].correlation, out[j].correlation)
	})

	return out
}

// aggregateError combines the errors of every candidate: the first one is
// primary, the others secondary.
func aggregateError(tries []*projectedTry) error {
	var agg error
	for _, t := range tries {
		if t.err == nil {
			continue
		}
		if agg == nil {
			agg = t.err
			continue
		}
		agg = errors.WithSecondaryError(agg, t.err)
	}
	if agg == nil {
		agg = errors.New("no linearizer produced a fit")
	}

	return agg
}
