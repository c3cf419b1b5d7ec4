// SPDX-License-Identifier: MIT

// Package matrix provides the small dense-matrix toolkit used to describe
// affine coordinate operations.
//
// The package provides:
//
//   - Dense, a row-major Matrix with error-returning accessors.
//   - Mul, MulVec and Inverse (Gauss–Jordan with partial pivoting).
//   - Affine helpers: identity, translation, scale, dimension selection and
//     pass-through expansion of a sub-matrix.
//   - ElementOrZero, the "no-data means zero" accessor used when two affine
//     matrices of different sizes are reconciled.
//
// An affine matrix for a transform from N source dimensions to M target
// dimensions has M+1 rows and N+1 columns; the last column holds the
// translation terms and the last row is [0 … 0 1].
package matrix
