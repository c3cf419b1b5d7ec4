// SPDX-License-Identifier: MIT

// Package builder: functional configuration of the builders.
//
// Contract:
//   - Option constructors validate and panic on meaningless inputs, except
//     WithConfig which returns an error for loaded values.
//   - Builders never panic on user data.

package builder

import (
	"log/slog"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/config"
)

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultDesiredPrecision is the residual threshold in grid cell units.
	DefaultDesiredPrecision = 1e-7

	// DefaultInferenceEpsilon is the grid-size inference tolerance, relative to
	// the span of the values.
	DefaultInferenceEpsilon = 1e-13

	// DefaultLinearityThreshold is the minimal correlation of a linear grid.
	DefaultLinearityThreshold = 0.9999

	// DefaultMaxIterations bounds the iterative inverse of interpolated transforms.
	DefaultMaxIterations = 50

	// exactFitTolerance snaps a correlation to 1 when every residual is below
	// this fraction of the value span.
	exactFitTolerance = 1e-11

	// batchCapacity is the number of points transformed per linearizer call.
	batchCapacity = 512
)

const (
	panicPrecision  = "builder: WithDesiredPrecision: precision must be finite and > 0"
	panicEpsilon    = "builder: WithInferenceEpsilon: eps must be in (0,1)"
	panicThreshold  = "builder: WithLinearityThreshold: threshold must be in (0,1]"
	panicIterations = "builder: WithMaxIterations: n must be >= 1"
	panicLogger     = "builder: WithLogger: nil logger"
)

// Option configures a builder.
type Option func(*options)

type options struct {
	precision     float64
	epsilon       float64
	threshold     float64
	maxIterations int
	logger        *slog.Logger
}

func defaultOptions() options {
	return options{
		precision:     DefaultDesiredPrecision,
		epsilon:       DefaultInferenceEpsilon,
		threshold:     DefaultLinearityThreshold,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
	}
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

// WithDesiredPrecision sets the default residual threshold in grid cell units.
func WithDesiredPrecision(p float64) Option {
	if !(p > 0) || math.IsInf(p, 0) {
		panic(panicPrecision)
	}

	return func(o *options) { o.precision = p }
}

// WithInferenceEpsilon sets the relative tolerance of grid size inference.
func WithInferenceEpsilon(eps float64) Option {
	if !(eps > 0 && eps < 1) {
		panic(panicEpsilon)
	}

	return func(o *options) { o.epsilon = eps }
}

// WithLinearityThreshold sets the minimal correlation for a grid to be linear.
func WithLinearityThreshold(t float64) Option {
	if !(t > 0 && t <= 1) {
		panic(panicThreshold)
	}

	return func(o *options) { o.threshold = t }
}

// WithMaxIterations bounds the inverse iteration of interpolated transforms.
func WithMaxIterations(n int) Option {
	if n < 1 {
		panic(panicIterations)
	}

	return func(o *options) { o.maxIterations = n }
}

// WithLogger sets the logger receiving debug events.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic(panicLogger)
	}

	return func(o *options) { o.logger = l }
}

// WithConfig applies loaded grid tolerances. Unlike the other options it
// returns an error, matching both ErrInvalidArgument and
// config.ErrInvalidConfig, for values the other options would panic on.
func WithConfig(c config.GridConfig) (Option, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "builder: WithConfig"), ErrInvalidArgument)
	}

	return func(o *options) {
		o.precision = c.DesiredPrecision
		o.epsilon = c.InferenceEpsilon
		o.threshold = c.LinearityThreshold
		o.maxIterations = c.MaxIterations
	}, nil
}
