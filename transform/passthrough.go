// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/matrix"
)

// passThrough applies sub to dimensions [first, first+sub.Source) and copies
// first leading and trailing dimensions unchanged.
type passThrough struct {
	first, trailing int
	sub             MathTransform
}

var (
	_ MathTransform  = (*passThrough)(nil)
	_ Differentiable = (*passThrough)(nil)
	_ Equaler        = (*passThrough)(nil)
)

// PassThrough wraps sub so that it operates on a sub-range of a larger space.
// Linear subs become a single expanded matrix.
func PassThrough(first int, sub MathTransform, trailing int) (MathTransform, error) {
	if sub == nil || first < 0 || trailing < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "PassThrough(%d, _, %d)", first, trailing)
	}
	if first == 0 && trailing == 0 {
		return sub, nil
	}
	if sub.IsIdentity() {
		return Identity(first + sub.SourceDimensions() + trailing), nil
	}
	if l, ok := sub.(LinearTransform); ok {
		m, err := matrix.CreatePassThrough(first, l.Matrix(), trailing)
		if err != nil {
			return nil, errors.Wrap(err, "PassThrough")
		}

		return NewLinear(m)
	}

	return &passThrough{first: first, trailing: trailing, sub: sub}, nil
}

// PassThroughIndices applies sub to the given sorted dimensions of a dim-D
// space. Contiguous indices reduce to PassThrough; scattered ones are
// permuted to the front, passed through, then permuted back, which requires
// sub to preserve its dimension.
func PassThroughIndices(dim int, indices []int, sub MathTransform) (MathTransform, error) {
	if sub == nil || len(indices) != sub.SourceDimensions() {
		return nil, errors.Wrap(ErrMismatchedDimension, "PassThroughIndices")
	}
	for i, v := range indices {
		if v < 0 || v >= dim || (i > 0 && v <= indices[i-1]) {
			return nil, errors.Wrapf(ErrInvalidArgument, "PassThroughIndices: index %d in %v", v, indices)
		}
	}
	n := len(indices)
	if indices[n-1]-indices[0] == n-1 {
		return PassThrough(indices[0], sub, dim-indices[n-1]-1)
	}
	if sub.TargetDimensions() != n {
		return nil, errors.Wrap(ErrMismatchedDimension, "PassThroughIndices: scattered indices need a square sub-transform")
	}
	order := make([]int, 0, dim)
	order = append(order, indices...)
	for d, k := 0, 0; d < dim; d++ {
		if k < n && indices[k] == d {
			k++
			continue
		}
		order = append(order, d)
	}
	perm, err := matrix.CreateDimensionSelect(dim, order)
	if err != nil {
		return nil, err
	}
	toFront, err := NewLinear(perm)
	if err != nil {
		return nil, err
	}
	back, err := toFront.Inverse()
	if err != nil {
		return nil, err
	}
	middle, err := PassThrough(0, sub, dim-n)
	if err != nil {
		return nil, err
	}

	return ConcatenateAll(toFront, middle, back)
}

func (p *passThrough) SourceDimensions() int { return p.first + p.sub.SourceDimensions() + p.trailing }
func (p *passThrough) TargetDimensions() int { return p.first + p.sub.TargetDimensions() + p.trailing }
func (p *passThrough) IsIdentity() bool      { return false }

// Transform copies the untouched coordinates and transforms the middle block.
func (p *passThrough) Transform(src, dst []float64, numPts int) error {
	sd, td := p.SourceDimensions(), p.TargetDimensions()
	if err := checkBuffers(src, dst, numPts, sd, td); err != nil {
		return errors.Wrap(err, "PassThrough.Transform")
	}
	src = safeSource(src, dst, numPts, sd, td)
	ns, nt := p.sub.SourceDimensions(), p.sub.TargetDimensions()
	in := make([]float64, sd)
	mid := make([]float64, nt)
	for k := 0; k < numPts; k++ {
		copy(in, src[k*sd:(k+1)*sd])
		if err := p.sub.Transform(in[p.first:p.first+ns], mid, 1); err != nil {
			return err
		}
		out := dst[k*td : (k+1)*td]
		copy(out[:p.first], in[:p.first])
		copy(out[p.first:p.first+nt], mid)
		copy(out[p.first+nt:], in[p.first+ns:])
	}

	return nil
}

// Derivative embeds the sub-transform Jacobian in an identity block matrix.
func (p *passThrough) Derivative(point []float64) (*matrix.Dense, error) {
	ns, nt := p.sub.SourceDimensions(), p.sub.TargetDimensions()
	ds, err := Derivative(p.sub, point[p.first:p.first+ns])
	if err != nil {
		return nil, err
	}
	out, err := matrix.NewDense(p.TargetDimensions(), p.SourceDimensions())
	if err != nil {
		return nil, err
	}
	for i := 0; i < p.first; i++ {
		_ = out.Set(i, i, 1)
	}
	for i := 0; i < nt; i++ {
		for j := 0; j < ns; j++ {
			_ = out.Set(p.first+i, p.first+j, matrix.ElementOrZero(ds, i, j))
		}
	}
	for k := 0; k < p.trailing; k++ {
		_ = out.Set(p.first+nt+k, p.first+ns+k, 1)
	}

	return out, nil
}

// Inverse passes the inverse sub-transform through the same dimensions.
func (p *passThrough) Inverse() (MathTransform, error) {
	inv, err := p.sub.Inverse()
	if err != nil {
		return nil, err
	}

	return PassThrough(p.first, inv, p.trailing)
}

func (p *passThrough) Equal(other MathTransform, tol float64) bool {
	o, ok := other.(*passThrough)

	return ok && o.first == p.first && o.trailing == p.trailing && Equal(p.sub, o.sub, tol)
}

func (p *passThrough) String() string {
	return fmt.Sprintf("PassThrough(%d, %s, %d)", p.first, describe(p.sub), p.trailing)
}
