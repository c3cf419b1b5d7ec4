// SPDX-License-Identifier: MIT

package parameter

import "github.com/cockroachdb/errors"

var (
	// ErrUnmodifiable is returned when mutating a frozen value group.
	ErrUnmodifiable = errors.New("parameter: value group is unmodifiable")

	// ErrParameterNotFound indicates a name matching no descriptor or no value.
	ErrParameterNotFound = errors.New("parameter: parameter not found")

	// ErrInvalidValue indicates a NaN or out-of-range value.
	ErrInvalidValue = errors.New("parameter: invalid value")
)
