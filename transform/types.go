// SPDX-License-Identifier: MIT

package transform

import (
	"github.com/katalvlaran/georef/matrix"
)

// MathTransform maps N-D source coordinates to M-D target coordinates.
type MathTransform interface {
	// SourceDimensions returns N.
	SourceDimensions() int

	// TargetDimensions returns M.
	TargetDimensions() int

	// Transform converts numPts interleaved points from src into dst.
	// dst may be the same slice as src.
	Transform(src, dst []float64, numPts int) error

	// Inverse returns the inverse transform or an error matching ErrNoninvertible.
	Inverse() (MathTransform, error)

	// IsIdentity reports whether the transform leaves every coordinate unchanged.
	IsIdentity() bool
}

// LinearTransform is a MathTransform fully described by an affine matrix.
type LinearTransform interface {
	MathTransform

	// Matrix returns a copy of the (M+1)×(N+1) affine matrix.
	Matrix() *matrix.Dense
}

// Differentiable is implemented by transforms that know their Jacobian.
type Differentiable interface {
	// Derivative returns the M×N Jacobian at point.
	Derivative(point []float64) (*matrix.Dense, error)
}

// Equaler is implemented by transforms able to compare themselves with
// another transform within a tolerance on numeric parameters.
type Equaler interface {
	Equal(other MathTransform, tol float64) bool
}

// Equal reports whether a and b compute the same function, as far as their
// structure tells. Linear transforms compare matrices with tol; other
// implementations compare through Equaler.
func Equal(a, b MathTransform, tol float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.SourceDimensions() != b.SourceDimensions() || a.TargetDimensions() != b.TargetDimensions() {
		return false
	}
	la, okA := a.(LinearTransform)
	lb, okB := b.(LinearTransform)
	if okA && okB {
		return matrix.AllClose(la.Matrix(), lb.Matrix(), 0, tol)
	}
	if okA != okB {
		return false
	}
	if e, ok := a.(Equaler); ok {
		return e.Equal(b, tol)
	}

	return false
}

// checkBuffers validates buffer lengths for numPts points.
func checkBuffers(src, dst []float64, numPts, srcDim, tgtDim int) error {
	if numPts < 0 {
		return ErrInvalidArgument
	}
	if len(src) < numPts*srcDim || len(dst) < numPts*tgtDim {
		return ErrMismatchedDimension
	}

	return nil
}

// safeSource returns src, or a copy of it when writing expanding target
// points into dst would overwrite source points not yet read.
func safeSource(src, dst []float64, numPts, srcDim, tgtDim int) []float64 {
	if tgtDim <= srcDim || numPts == 0 || len(src) == 0 || len(dst) == 0 {
		return src
	}
	if &src[0] != &dst[0] {
		return src
	}
	cp := make([]float64, numPts*srcDim)
	copy(cp, src)

	return cp
}
