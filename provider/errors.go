// SPDX-License-Identifier: MIT

package provider

import "github.com/cockroachdb/errors"

// ErrInvalidParameter indicates a parameter value a method cannot use.
var ErrInvalidParameter = errors.New("provider: invalid parameter value")
