// SPDX-License-Identifier: MIT

package crs

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidArgument signals a malformed constructor argument.
	ErrInvalidArgument = errors.New("crs: invalid argument")

	// ErrIncompatibleUnit indicates that two units measure different quantities.
	ErrIncompatibleUnit = errors.New("crs: incompatible units")

	// ErrIncompatibleAxes indicates that no axis permutation maps one
	// coordinate system onto another.
	ErrIncompatibleAxes = errors.New("crs: incompatible coordinate system axes")
)
