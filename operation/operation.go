// SPDX-License-Identifier: MIT

package operation

import (
	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/transform"
)

// CoordinateOperation converts coordinates from a source CRS to a target CRS.
type CoordinateOperation interface {
	// Name returns the operation name.
	Name() string

	// SourceCRS returns the source CRS, nil for a defining conversion.
	SourceCRS() *crs.CRS

	// TargetCRS returns the target CRS, nil for a defining conversion.
	TargetCRS() *crs.CRS

	// Transform returns the math transform, nil for a defining conversion.
	Transform() transform.MathTransform

	// Accuracy returns the positional accuracy in metres, 0 when unknown.
	Accuracy() float64

	// Inverse returns the operation from target to source.
	Inverse() (CoordinateOperation, error)
}

// Properties are the identification properties given at construction.
type Properties struct {
	Name string

	// Accuracy in metres; 0 means unknown. A concatenated operation with a
	// zero accuracy derives one from its steps.
	Accuracy float64

	// Interpolation is the CRS of the leading coordinates some
	// transformations need in addition to the source coordinates.
	Interpolation *crs.CRS
}

// Equal compares two operations under mode. Operations of different
// concrete types are never equal. Under crs.Approximate, transform
// coefficients are compared with the tolerance set by WithTolerance.
func Equal(a, b CoordinateOperation, mode crs.ComparisonMode, opts ...Option) bool {
	return equalWithin(a, b, mode, gatherOptions(opts).tolerance)
}

func equalWithin(a, b CoordinateOperation, mode crs.ComparisonMode, tol float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *SingleOperation:
		return x.equal(b, mode, tol)
	case *ConcatenatedOperation:
		return x.equal(b, mode, tol)
	case *PassThroughOperation:
		return x.equal(b, mode, tol)
	}

	return a == b
}

// sameTransform compares transforms exactly, or within tol under Approximate.
func sameTransform(a, b transform.MathTransform, mode crs.ComparisonMode, tol float64) bool {
	if mode != crs.Approximate {
		tol = 0
	}

	return transform.Equal(a, b, tol)
}

// sameCRS compares CRS, treating two nil CRS as equal.
func sameCRS(a, b *crs.CRS, mode crs.ComparisonMode) bool {
	if a == nil || b == nil {
		return a == b
	}

	return crs.Equal(a, b, mode)
}

// isIdentity reports whether op does nothing.
func isIdentity(op CoordinateOperation) bool {
	mt := op.Transform()

	return mt != nil && mt.IsIdentity()
}
