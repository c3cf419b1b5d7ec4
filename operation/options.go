// SPDX-License-Identifier: MIT

package operation

import (
	"log/slog"
	"math"
)

// DefaultTolerance is the tolerance on transform coefficients used by
// comparisons under crs.Approximate.
const DefaultTolerance = 1e-9

// Option configures a factory, a draft or a comparison.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	tolerance float64
}

func defaultOptions() options {
	return options{logger: slog.Default(), tolerance: DefaultTolerance}
}

func gatherOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger receiving warnings and debug events.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("operation: WithLogger: nil logger")
	}

	return func(o *options) { o.logger = l }
}

// WithTolerance sets the tolerance on transform coefficients of comparisons
// under crs.Approximate, made by Equal or MathTransformFactory.Equal.
func WithTolerance(tol float64) Option {
	if !(tol >= 0) || math.IsInf(tol, 0) {
		panic("operation: WithTolerance: tolerance must be finite and >= 0")
	}

	return func(o *options) { o.tolerance = tol }
}
