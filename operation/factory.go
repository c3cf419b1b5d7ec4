// SPDX-License-Identifier: MIT

package operation

import (
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/transform"
)

// Provider creates the transforms of one operation method.
type Provider interface {
	// Method describes the method and its parameter descriptors.
	Method() *Method

	// SourceCS is the coordinate system expected by Create's transform, or
	// nil when source coordinates are used as given.
	SourceCS() *crs.CoordinateSystem

	// TargetCS is the coordinate system produced by Create's transform, or
	// nil when target coordinates are returned as given.
	TargetCS() *crs.CoordinateSystem

	// Create returns the transform for the given values.
	Create(values *parameter.ValueGroup) (transform.MathTransform, error)
}

// MathTransformFactory is a registry of providers. It is safe for
// concurrent use.
type MathTransformFactory struct {
	mu        sync.RWMutex
	providers []Provider
	logger    *slog.Logger
	tolerance float64
}

// NewMathTransformFactory returns an empty factory.
func NewMathTransformFactory(opts ...Option) *MathTransformFactory {
	o := gatherOptions(opts)

	return &MathTransformFactory{logger: o.logger, tolerance: o.tolerance}
}

// Register adds p. A provider whose method name or alias is already
// registered is rejected.
func (f *MathTransformFactory) Register(p Provider) error {
	if p == nil || p.Method() == nil || p.Method().Parameters == nil {
		return errors.Wrap(ErrInvalidArgument, "Register: provider without method parameters")
	}
	m := p.Method()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.providers {
		if q.Method().SameAs(m) {
			return errors.Wrapf(ErrInvalidArgument, "Register: %q already provided", m.Name)
		}
	}
	f.providers = append(f.providers, p)
	f.logger.Debug("provider registered", slog.String("method", m.Name))

	return nil
}

// Provider returns the provider whose method matches name or one of its aliases.
func (f *MathTransformFactory) Provider(name string) (Provider, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.providers {
		if p.Method().Matches(name) {
			return p, nil
		}
	}

	return nil, errors.Wrapf(ErrMethodNotFound, "%q", name)
}

// Equal compares a and b under mode with the tolerance of the factory.
func (f *MathTransformFactory) Equal(a, b CoordinateOperation, mode crs.ComparisonMode) bool {
	return equalWithin(a, b, mode, f.tolerance)
}

// Methods returns the registered methods in registration order.
func (f *MathTransformFactory) Methods() []*Method {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Method, len(f.providers))
	for i, p := range f.providers {
		out[i] = p.Method()
	}

	return out
}

// CreateAffine returns the linear transform of the affine matrix m.
func (f *MathTransformFactory) CreateAffine(m matrix.Matrix) (transform.MathTransform, error) {
	l, err := transform.NewLinear(m)
	if err != nil {
		return nil, errors.Wrap(err, "CreateAffine")
	}

	return l, nil
}

// Concatenate returns the transform applying steps in order.
func (f *MathTransformFactory) Concatenate(steps ...transform.MathTransform) (transform.MathTransform, error) {
	return transform.ConcatenateAll(steps...)
}

// Builder returns a builder for the provider of method, trying the method
// name then its aliases.
func (f *MathTransformFactory) Builder(method *Method) (*ParameterizedTransformBuilder, error) {
	if method == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "Builder: nil method")
	}
	p, err := f.Provider(method.Name)
	for _, a := range method.Aliases {
		if err == nil {
			break
		}
		p, err = f.Provider(a)
	}
	if err != nil {
		return nil, err
	}

	return newParameterizedTransformBuilder(f, p), nil
}
