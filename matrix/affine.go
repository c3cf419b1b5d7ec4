// SPDX-License-Identifier: MIT
// Package matrix - affine matrix helpers.
//
// An affine matrix from N source to M target dimensions is (M+1)×(N+1),
// last column = translation, last row = [0 … 0 1].

package matrix

import (
	"math"

	"github.com/cockroachdb/errors"
)

const (
	opAffine      = "NewAffineIdentity"
	opSelect      = "CreateDimensionSelect"
	opPassThrough = "CreatePassThrough"
)

// NewAffineIdentity returns the (dim+1)×(dim+1) identity affine matrix.
func NewAffineIdentity(dim int) (*Dense, error) {
	if dim < 0 {
		return nil, matrixErrorf(opAffine, ErrInvalidDimensions)
	}

	return NewIdentity(dim + 1)
}

// ElementOrZero reads m(i,j) with the "no-data means zero" convention:
// a nil matrix or out-of-range indices yield 0.
func ElementOrZero(m Matrix, i, j int) float64 {
	if ValidateNotNil(m) != nil {
		return 0
	}
	v, err := m.At(i, j)
	if err != nil {
		return 0
	}

	return v
}

// IsAffine reports whether the last row of m is [0 … 0 1].
func IsAffine(m Matrix) bool {
	if ValidateNotNil(m) != nil {
		return false
	}
	last := m.Rows() - 1
	lastCol := m.Cols() - 1
	for j := 0; j <= lastCol; j++ {
		want := 0.0
		if j == lastCol {
			want = 1
		}
		if v, _ := m.At(last, j); v != want {
			return false
		}
	}

	return true
}

// IsIdentity reports whether m is square and each element differs from the
// identity by at most tol.
func IsIdentity(m Matrix, tol float64) bool {
	if ValidateSquare(m) != nil {
		return false
	}
	d := asDense(m)
	for i := 0; i < d.r; i++ {
		for j := 0; j < d.c; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if !(math.Abs(d.data[i*d.c+j]-want) <= tol) {
				return false
			}
		}
	}

	return true
}

// CreateDimensionSelect returns the affine matrix keeping only the selected
// source dimensions, in the given order.
//
// Complexity: O(len(selected)*srcDim).
func CreateDimensionSelect(srcDim int, selected []int) (*Dense, error) {
	if srcDim < 0 || len(selected) == 0 {
		return nil, matrixErrorf(opSelect, ErrInvalidDimensions)
	}
	m, err := NewDense(len(selected)+1, srcDim+1)
	if err != nil {
		return nil, matrixErrorf(opSelect, err)
	}
	for i, s := range selected {
		if s < 0 || s >= srcDim {
			return nil, matrixErrorf(opSelect, errors.Wrapf(ErrOutOfRange, "dimension %d of %d", s, srcDim))
		}
		m.data[i*m.c+s] = 1
	}
	m.data[len(m.data)-1] = 1

	return m, nil
}

// CreatePassThrough expands the affine matrix sub so that it operates on the
// dimensions [first, first+sub.Cols()-1) of a larger space, leaving first
// leading and trailing dimensions unchanged.
//
// Implementation:
//   - Stage 1: validate sub is affine and counts are non-negative.
//   - Stage 2: copy identity blocks for leading and trailing dimensions.
//   - Stage 3: copy sub coefficients into the middle block and its translation
//     into the last column.
func CreatePassThrough(first int, sub Matrix, trailing int) (*Dense, error) {
	if err := ValidateNotNil(sub); err != nil {
		return nil, matrixErrorf(opPassThrough, err)
	}
	if first < 0 || trailing < 0 {
		return nil, matrixErrorf(opPassThrough, ErrInvalidDimensions)
	}
	if !IsAffine(sub) {
		return nil, matrixErrorf(opPassThrough, ErrNotAffine)
	}
	ds := asDense(sub)
	subTgt, subSrc := ds.r-1, ds.c-1
	rows := first + subTgt + trailing + 1
	cols := first + subSrc + trailing + 1
	out, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opPassThrough, err)
	}
	for i := 0; i < first; i++ {
		out.data[i*cols+i] = 1
	}
	for i := 0; i < subTgt; i++ {
		row := first + i
		for j := 0; j < subSrc; j++ {
			out.data[row*cols+first+j] = ds.data[i*ds.c+j]
		}
		out.data[row*cols+cols-1] = ds.data[i*ds.c+subSrc]
	}
	for k := 0; k < trailing; k++ {
		row := first + subTgt + k
		out.data[row*cols+first+subSrc+k] = 1
	}
	out.data[len(out.data)-1] = 1

	return out, nil
}

// Translation returns the affine matrix adding offsets[i] to dimension i.
func Translation(offsets []float64) (*Dense, error) {
	n := len(offsets)
	m, err := NewAffineIdentity(n)
	if err != nil {
		return nil, err
	}
	for i, v := range offsets {
		m.data[i*(n+1)+n] = v
	}

	return m, nil
}

// Scale returns the affine matrix multiplying dimension i by factors[i].
func Scale(factors []float64) (*Dense, error) {
	n := len(factors)
	m, err := NewAffineIdentity(n)
	if err != nil {
		return nil, err
	}
	for i, v := range factors {
		m.data[i*(n+1)+i] = v
	}

	return m, nil
}
