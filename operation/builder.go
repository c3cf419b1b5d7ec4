// SPDX-License-Identifier: MIT

package operation

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/transform"
)

// Names of the parameters completed from the ellipsoid of the CRS.
const (
	SemiMajor         = "semi_major"
	InverseFlattening = "inverse_flattening"
)

// ParameterizedTransformBuilder collects the parameters and CRS of one
// provider and creates the normalized transform.
type ParameterizedTransformBuilder struct {
	factory    *MathTransformFactory
	provider   Provider
	values     *parameter.ValueGroup
	source     *crs.CRS
	target     *crs.CRS
	contextual map[string]bool
}

func newParameterizedTransformBuilder(f *MathTransformFactory, p Provider) *ParameterizedTransformBuilder {
	return &ParameterizedTransformBuilder{
		factory:    f,
		provider:   p,
		values:     parameter.NewValueGroup(p.Method().Parameters),
		contextual: make(map[string]bool),
	}
}

// Method returns the provider method.
func (b *ParameterizedTransformBuilder) Method() *Method { return b.provider.Method() }

// Parameters returns the values collected so far.
func (b *ParameterizedTransformBuilder) Parameters() *parameter.ValueGroup { return b.values }

// ContextualParameters returns the names of the parameters completed from
// the CRS rather than given by the caller.
func (b *ParameterizedTransformBuilder) ContextualParameters() map[string]bool {
	out := make(map[string]bool, len(b.contextual))
	for k, v := range b.contextual {
		out[k] = v
	}

	return out
}

// SetParameters copies every value of g, matched by name or alias.
func (b *ParameterizedTransformBuilder) SetParameters(g *parameter.ValueGroup) error {
	if g == nil {
		return nil
	}
	for _, v := range g.Values() {
		names := append([]string{v.Descriptor.Name}, v.Descriptor.Aliases...)
		var err error
		for _, n := range names {
			if err = b.values.SetValue(n, v.Value); err == nil {
				break
			}
		}
		if err != nil {
			return errors.WithSecondaryError(
				errors.Wrapf(ErrInvalidGeodeticParameter, "parameter %q for %q", v.Descriptor.Name, b.Method().Name), err)
		}
	}

	return nil
}

// SetSourceCRS sets the CRS of the input coordinates.
func (b *ParameterizedTransformBuilder) SetSourceCRS(c *crs.CRS) { b.source = c }

// SetTargetCRS sets the CRS of the output coordinates.
func (b *ParameterizedTransformBuilder) SetTargetCRS(c *crs.CRS) { b.target = c }

// Create returns the transform from the source CRS to the target CRS.
//
// Implementation:
//   - Stage 1: complete semi_major and inverse_flattening from the
//     ellipsoid of the source CRS, or the base of the target CRS, when the
//     method expects them and the caller did not give them.
//   - Stage 2: let the provider build its kernel.
//   - Stage 3: wrap the kernel between axis swap and scale matrices from
//     the source CS to the provider CS, and from the provider CS to the
//     target CS.
func (b *ParameterizedTransformBuilder) Create() (transform.MathTransform, error) {
	if err := b.completeEllipsoid(); err != nil {
		return nil, err
	}
	kernel, err := b.provider.Create(b.values)
	if err != nil {
		return nil, errors.Wrapf(err, "create %q", b.Method().Name)
	}
	steps := make([]transform.MathTransform, 0, 3)
	if cs := b.provider.SourceCS(); cs != nil && b.source != nil {
		m, err := crs.SwapAndScaleAxes(b.source.CoordinateSystem(), cs)
		if err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidGeodeticParameter, "source axes of %q", b.Method().Name), err)
		}
		l, err := transform.NewLinear(m)
		if err != nil {
			return nil, err
		}
		steps = append(steps, l)
	}
	steps = append(steps, kernel)
	if cs := b.provider.TargetCS(); cs != nil && b.target != nil {
		m, err := crs.SwapAndScaleAxes(cs, b.target.CoordinateSystem())
		if err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidGeodeticParameter, "target axes of %q", b.Method().Name), err)
		}
		l, err := transform.NewLinear(m)
		if err != nil {
			return nil, err
		}
		steps = append(steps, l)
	}

	return b.factory.Concatenate(steps...)
}

func (b *ParameterizedTransformBuilder) completeEllipsoid() error {
	e := b.ellipsoid()
	if e == nil {
		return nil
	}
	desc := b.values.Descriptor()
	for _, p := range []struct {
		name  string
		value float64
	}{{SemiMajor, e.A()}, {InverseFlattening, e.Fi()}} {
		if desc.Descriptor(p.name) == nil || b.values.IsSet(p.name) {
			continue
		}
		if err := b.values.SetValue(p.name, p.value); err != nil {
			return errors.Wrapf(err, "complete %q", p.name)
		}
		b.contextual[p.name] = true
		b.factory.logger.Debug("contextual parameter completed",
			slog.String("method", b.Method().Name), slog.String("parameter", p.name), slog.Float64("value", p.value))
	}

	return nil
}

func (b *ParameterizedTransformBuilder) ellipsoid() *crs.Ellipsoid {
	for _, c := range []*crs.CRS{b.source, b.target} {
		for c != nil {
			if d := c.Datum(); d != nil && d.Ellipsoid != nil {
				return d.Ellipsoid
			}
			c = c.Base()
		}
	}

	return nil
}
