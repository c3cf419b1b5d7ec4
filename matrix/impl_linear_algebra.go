// SPDX-License-Identifier: MIT
// Package matrix - linear-algebra kernels on any Matrix implementation:
// identity, product, transpose and inverse.
//
// Purpose:
//   - Provide the few kernels needed to compose and invert affine matrices.
//   - Fail fast with plain sentinels wrapped by matrixErrorf at the facade.
//
// Notes:
//   - Inverse uses Gauss–Jordan elimination with partial pivoting, so axis-swap
//     matrices (zero diagonal) invert without special casing.

package matrix

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ZeroSum is the initial sum value for dot products.
const ZeroSum = 0.0

// ZeroPivot is the sentinel for detecting a zero pivot in Inverse.
const ZeroPivot = 0.0

// Operation name constants for unified error wrapping.
const (
	opMul      = "Mul"
	opInverse  = "Inverse"
	opIdentity = "Identity"
)

// matrixErrorf wraps err with an operation tag, preserving the sentinel for errors.Is.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return errors.Wrap(err, tag)
}

// NewIdentity returns the n×n identity matrix.
func NewIdentity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opIdentity, err)
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m, nil
}

// Mul computes the matrix product a×b.
//
// Implementation:
//   - Stage 1: validate non-nil operands and a.Cols == b.Rows.
//   - Stage 2: fixed i→k→j loop order over the flat buffers.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, db := asDense(a), asDense(b)
	r, n, c := da.r, da.c, db.c
	out := &Dense{r: r, c: c, data: make([]float64, r*c)}
	for i := 0; i < r; i++ {
		row := out.data[i*c : (i+1)*c]
		for k := 0; k < n; k++ {
			aik := da.data[i*n+k]
			if aik == 0 {
				continue // sparse affine matrices are mostly zeros
			}
			bk := db.data[k*c : (k+1)*c]
			for j := 0; j < c; j++ {
				row[j] += aik * bk[j]
			}
		}
	}

	return out, nil
}

// Inverse returns the inverse of the square matrix m.
//
// Implementation:
//   - Stage 1: validate square and finite.
//   - Stage 2: build the augmented [m | I] buffer.
//   - Stage 3: for each column choose the row with the largest absolute pivot,
//     swap it up, normalize, and eliminate the column from every other row.
//   - Stage 4: copy the right half out.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf, ErrSingular.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func Inverse(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	d := asDense(m)
	n := d.r
	w := 2 * n
	aug := make([]float64, n*w)
	for i := 0; i < n; i++ {
		copy(aug[i*w:i*w+n], d.data[i*n:(i+1)*n])
		aug[i*w+n+i] = 1
	}

	for col := 0; col < n; col++ {
		// Partial pivoting.
		p, best := col, math.Abs(aug[col*w+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r*w+col]); v > best {
				p, best = r, v
			}
		}
		if best == ZeroPivot {
			return nil, matrixErrorf(opInverse, errors.Wrapf(ErrSingular, "column %d", col))
		}
		if p != col {
			rp, rc := aug[p*w:(p+1)*w], aug[col*w:(col+1)*w]
			for j := range rp {
				rp[j], rc[j] = rc[j], rp[j]
			}
		}
		pivotRow := aug[col*w : (col+1)*w]
		inv := 1 / pivotRow[col]
		for j := range pivotRow {
			pivotRow[j] *= inv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := aug[r*w+col]
			if f == 0 {
				continue
			}
			row := aug[r*w : (r+1)*w]
			for j := range row {
				row[j] -= f * pivotRow[j]
			}
		}
	}

	out := &Dense{r: n, c: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		copy(out.data[i*n:(i+1)*n], aug[i*w+n:(i+1)*w])
	}

	return out, nil
}

// MulVec computes m×v for a vector of length m.Cols().
func MulVec(m Matrix, v []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if len(v) != m.Cols() {
		return nil, matrixErrorf(opMul, errors.Wrapf(ErrDimensionMismatch, "vector length %d for %d columns", len(v), m.Cols()))
	}
	d := asDense(m)
	out := make([]float64, d.r)
	for i := 0; i < d.r; i++ {
		s := ZeroSum
		for j, x := range d.data[i*d.c : (i+1)*d.c] {
			s += x * v[j]
		}
		out[i] = s
	}

	return out, nil
}
