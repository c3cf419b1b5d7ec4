// SPDX-License-Identifier: MIT

package transform

import (
	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/matrix"
)

// Linear is an affine transform backed by an (M+1)×(N+1) matrix.
type Linear struct {
	m        *matrix.Dense
	identity bool
	inverse  *Linear // lazily cached by the inverse side only
}

var (
	_ LinearTransform = (*Linear)(nil)
	_ Differentiable  = (*Linear)(nil)
)

// NewLinear returns the affine transform described by m.
// m is copied; its last row must be [0 … 0 1].
func NewLinear(m matrix.Matrix) (*Linear, error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return nil, errors.Wrap(err, "NewLinear")
	}
	if !matrix.IsAffine(m) {
		return nil, errors.Wrap(matrix.ErrNotAffine, "NewLinear")
	}
	d, err := matrix.NewDenseFrom(m.Rows(), m.Cols(), denseData(m))
	if err != nil {
		return nil, errors.Wrap(err, "NewLinear")
	}

	return &Linear{m: d, identity: matrix.IsIdentity(d, 0)}, nil
}

// Identity returns the identity transform of the given dimension.
func Identity(dim int) *Linear {
	m, err := matrix.NewAffineIdentity(dim)
	if err != nil {
		panic(err) // negative dimension is a programming error
	}

	return &Linear{m: m, identity: true}
}

// MustLinear is NewLinear for matrices known to be affine; it panics otherwise.
func MustLinear(m matrix.Matrix) *Linear {
	l, err := NewLinear(m)
	if err != nil {
		panic(err)
	}

	return l
}

func denseData(m matrix.Matrix) []float64 {
	if d, ok := m.(*matrix.Dense); ok {
		return d.RawData()
	}
	out := make([]float64, 0, m.Rows()*m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, _ := m.At(i, j)
			out = append(out, v)
		}
	}

	return out
}

// SourceDimensions returns N.
func (l *Linear) SourceDimensions() int { return l.m.Cols() - 1 }

// TargetDimensions returns M.
func (l *Linear) TargetDimensions() int { return l.m.Rows() - 1 }

// IsIdentity reports whether the matrix is exactly the identity.
func (l *Linear) IsIdentity() bool { return l.identity }

// Matrix returns a copy of the affine matrix.
func (l *Linear) Matrix() *matrix.Dense {
	return l.m.Clone().(*matrix.Dense)
}

// Transform applies the matrix to every point.
// Complexity: O(numPts*M*N).
func (l *Linear) Transform(src, dst []float64, numPts int) error {
	n, m := l.SourceDimensions(), l.TargetDimensions()
	if err := checkBuffers(src, dst, numPts, n, m); err != nil {
		return errors.Wrap(err, "Linear.Transform")
	}
	src = safeSource(src, dst, numPts, n, m)
	data := l.m.RawData()
	cols := n + 1
	in := make([]float64, n)
	for p := 0; p < numPts; p++ {
		copy(in, src[p*n:(p+1)*n]) // dst may alias src
		out := dst[p*m : (p+1)*m]
		for i := 0; i < m; i++ {
			row := data[i*cols : (i+1)*cols]
			s := row[n]
			for j, x := range in {
				s += row[j] * x
			}
			out[i] = s
		}
	}

	return nil
}

// Derivative returns the linear part of the matrix, the same at every point.
func (l *Linear) Derivative(_ []float64) (*matrix.Dense, error) {
	n, m := l.SourceDimensions(), l.TargetDimensions()
	if n == 0 || m == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "Linear.Derivative: zero dimension")
	}
	d, _ := matrix.NewDense(m, n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v, _ := l.m.At(i, j)
			_ = d.Set(i, j, v)
		}
	}

	return d, nil
}

// Inverse inverts the matrix. Only square matrices are invertible.
func (l *Linear) Inverse() (MathTransform, error) {
	if l.identity {
		return l, nil
	}
	if l.inverse != nil {
		return l.inverse, nil
	}
	if l.m.Rows() != l.m.Cols() {
		return nil, errors.Wrapf(ErrNoninvertible, "%d→%d affine transform", l.SourceDimensions(), l.TargetDimensions())
	}
	inv, err := matrix.Inverse(l.m)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrNoninvertible, "Linear.Inverse"), err)
	}

	return &Linear{m: inv, identity: matrix.IsIdentity(inv, 0), inverse: l}, nil
}

// String prints the matrix.
func (l *Linear) String() string { return "Affine\n" + l.m.String() }
