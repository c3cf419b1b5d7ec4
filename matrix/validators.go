// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Return sentinel errors wrapped with the validator tag so call sites can wrap again.
//
// Note:
//  - Each composite validator follows a fixed sequence (e.g. NotNil → Shape).

package matrix

import (
	"math"

	"github.com/cockroachdb/errors"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return errors.Wrap(err, tag)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// Complexity: O(1).
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix) // typed nil behind the interface
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateMulCompatible checks that a×b is defined.
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite rejects any NaN or ±Inf element.
// Complexity: O(r*c).
func ValidateFinite(m Matrix) error {
	d := asDense(m)
	for _, v := range d.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf("ValidateFinite", ErrNaNInf)
		}
	}

	return nil
}

// AllClose reports whether a and b have the same shape and every pair of
// elements differs by at most atol + rtol*|b|. NaN never compares close.
func AllClose(a, b Matrix, rtol, atol float64) bool {
	if ValidateNotNil(a) != nil || ValidateNotNil(b) != nil {
		return false
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return false
	}
	da, db := asDense(a), asDense(b)
	for k, x := range da.data {
		y := db.data[k]
		if math.IsNaN(x) || math.IsNaN(y) {
			return false
		}
		if x == y {
			continue // covers equal infinities
		}
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false
		}
	}

	return true
}
