// SPDX-License-Identifier: MIT

package transform

import "github.com/cockroachdb/errors"

var (
	// ErrNoninvertible indicates that a transform has no inverse.
	ErrNoninvertible = errors.New("transform: transform is not invertible")

	// ErrTransform indicates that a coordinate could not be transformed.
	ErrTransform = errors.New("transform: cannot transform coordinate")

	// ErrMismatchedDimension indicates that chained transforms, or buffers,
	// disagree on the number of dimensions.
	ErrMismatchedDimension = errors.New("transform: mismatched dimension")

	// ErrInvalidArgument signals a malformed argument (negative counts,
	// short buffers, unsorted indices).
	ErrInvalidArgument = errors.New("transform: invalid argument")
)
