// SPDX-License-Identifier: MIT

package operation

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidGeodeticParameter indicates an operation chain whose CRS do
	// not connect, or a component that cannot be used as given.
	ErrInvalidGeodeticParameter = errors.New("operation: invalid geodetic parameter")

	// ErrMismatchedDatum is returned when a conversion would be specialized
	// on CRS of another datum.
	ErrMismatchedDatum = errors.New("operation: mismatched datum")

	// ErrMissingComponent names the first missing component of a draft.
	ErrMissingComponent = errors.New("operation: missing component")

	// ErrGeodetic wraps failures while completing a pass-through operation.
	ErrGeodetic = errors.New("operation: cannot complete operation")

	// ErrOperationNotFound is returned when no operation links two CRS.
	ErrOperationNotFound = errors.New("operation: operation not found")

	// ErrMethodNotFound is returned when no provider implements a method.
	ErrMethodNotFound = errors.New("operation: no provider for method")

	// ErrDraftConsumed is returned by a second Build of the same draft.
	ErrDraftConsumed = errors.New("operation: draft already built")

	// ErrPropertyAlreadySet is returned when a set-once property is assigned twice.
	ErrPropertyAlreadySet = errors.New("operation: property already set")

	// ErrInvalidArgument signals nil or inconsistent arguments.
	ErrInvalidArgument = errors.New("operation: invalid argument")
)
