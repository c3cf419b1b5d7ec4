// SPDX-License-Identifier: MIT

package builder

import "github.com/cockroachdb/errors"

var (
	// ErrUnmodifiable is returned by mutators invoked after Create.
	ErrUnmodifiable = errors.New("builder: builder is frozen after create")

	// ErrCannotInferGridSize is returned when source coordinate vectors do not
	// reconcile with an integer grid size.
	ErrCannotInferGridSize = errors.New("builder: cannot infer grid size from values")

	// ErrLocalizationGrid wraps unexpected transform failures while computing residuals
	// or linearizing the grid.
	ErrLocalizationGrid = errors.New("builder: cannot build localization grid")

	// ErrNonInvertibleLinearizer is returned when the selected linearizer must be
	// compensated but has no inverse.
	ErrNonInvertibleLinearizer = errors.New("builder: linearizer is not invertible")

	// ErrDegenerateFit is returned when the points cannot determine an affine system.
	ErrDegenerateFit = errors.New("builder: not enough independent points to fit")

	// ErrMissingValues is returned when some grid cell has no control point.
	ErrMissingValues = errors.New("builder: no control point for some grid cells")

	// ErrMismatchedDimension indicates coordinates of unexpected dimension.
	ErrMismatchedDimension = errors.New("builder: mismatched dimension")

	// ErrInvalidArgument signals an out-of-range index, duplicated dimension or
	// non-positive size.
	ErrInvalidArgument = errors.New("builder: invalid argument")

	// ErrNotCreated is returned by accessors that need a prior Create.
	ErrNotCreated = errors.New("builder: create has not been invoked")
)
