// SPDX-License-Identifier: MIT

package crs

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// CRS is an immutable coordinate reference system.
type CRS struct {
	name       string
	kind       Kind
	cs         *CoordinateSystem
	datum      *Datum
	base       *CRS   // Projected and Derived only
	components []*CRS // Compound only, flattened
}

func newSingle(kind Kind, name string, datum *Datum, cs *CoordinateSystem) (*CRS, error) {
	if cs.Dimension() == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s CRS %q: empty coordinate system", kind, name)
	}
	if datum == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s CRS %q: nil datum", kind, name)
	}

	return &CRS{name: name, kind: kind, cs: cs, datum: datum}, nil
}

// NewGeographic returns a 2-D or 3-D ellipsoidal CRS.
func NewGeographic(name string, datum *Datum, cs *CoordinateSystem) (*CRS, error) {
	if d := cs.Dimension(); d != 2 && d != 3 {
		return nil, errors.Wrapf(ErrInvalidArgument, "geographic CRS %q: %d axes", name, d)
	}

	return newSingle(KindGeographic, name, datum, cs)
}

// NewGeocentric returns a 3-D Cartesian geocentric CRS.
func NewGeocentric(name string, datum *Datum, cs *CoordinateSystem) (*CRS, error) {
	if cs.Dimension() != 3 {
		return nil, errors.Wrapf(ErrInvalidArgument, "geocentric CRS %q: %d axes", name, cs.Dimension())
	}

	return newSingle(KindGeocentric, name, datum, cs)
}

// NewVertical returns a 1-D vertical CRS.
func NewVertical(name string, datum *Datum, cs *CoordinateSystem) (*CRS, error) {
	if cs.Dimension() != 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "vertical CRS %q: %d axes", name, cs.Dimension())
	}

	return newSingle(KindVertical, name, datum, cs)
}

// NewTemporal returns a 1-D temporal CRS.
func NewTemporal(name string, datum *Datum, cs *CoordinateSystem) (*CRS, error) {
	if cs.Dimension() != 1 {
		return nil, errors.Wrapf(ErrInvalidArgument, "temporal CRS %q: %d axes", name, cs.Dimension())
	}

	return newSingle(KindTemporal, name, datum, cs)
}

// NewEngineering returns an engineering (local) CRS.
func NewEngineering(name string, datum *Datum, cs *CoordinateSystem) (*CRS, error) {
	return newSingle(KindEngineering, name, datum, cs)
}

// NewProjected returns a CRS derived from a geographic base by a map projection.
func NewProjected(name string, base *CRS, cs *CoordinateSystem) (*CRS, error) {
	if base == nil || base.kind != KindGeographic {
		return nil, errors.Wrapf(ErrInvalidArgument, "projected CRS %q: base must be geographic", name)
	}
	if cs.Dimension() != base.cs.Dimension() && cs.Dimension() != 2 {
		return nil, errors.Wrapf(ErrInvalidArgument, "projected CRS %q: %d axes", name, cs.Dimension())
	}

	return &CRS{name: name, kind: KindProjected, cs: cs, datum: base.datum, base: base}, nil
}

// NewDerived returns a CRS derived from any single base CRS by a conversion.
func NewDerived(name string, base *CRS, cs *CoordinateSystem) (*CRS, error) {
	if base == nil || base.kind == KindCompound {
		return nil, errors.Wrapf(ErrInvalidArgument, "derived CRS %q: base must be a single CRS", name)
	}
	if cs.Dimension() == 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "derived CRS %q: empty coordinate system", name)
	}

	return &CRS{name: name, kind: KindDerived, cs: cs, datum: base.datum, base: base}, nil
}

// NewCompound returns the concatenation of components; nested compound
// components are flattened.
func NewCompound(name string, components ...*CRS) (*CRS, error) {
	flat := make([]*CRS, 0, len(components))
	axes := make([]Axis, 0, 4)
	for _, c := range components {
		if c == nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "compound CRS %q: nil component", name)
		}
		flat = append(flat, c.Components()...)
		axes = append(axes, c.cs.Axes...)
	}
	if len(flat) < 2 {
		return nil, errors.Wrapf(ErrInvalidArgument, "compound CRS %q: %d components", name, len(flat))
	}

	return &CRS{name: name, kind: KindCompound, cs: NewCoordinateSystem(name, axes...), components: flat}, nil
}

// MustCRS panics when err is not nil. Intended for package-level fixtures.
func MustCRS(c *CRS, err error) *CRS {
	if err != nil {
		panic(err)
	}

	return c
}

// Name returns the CRS name.
func (c *CRS) Name() string { return c.name }

// Kind returns the CRS variant.
func (c *CRS) Kind() Kind { return c.kind }

// CoordinateSystem returns the coordinate system (the concatenated axes for compounds).
func (c *CRS) CoordinateSystem() *CoordinateSystem { return c.cs }

// Datum returns the datum; Projected and Derived CRS report their base datum,
// compounds report nil.
func (c *CRS) Datum() *Datum { return c.datum }

// Base returns the base CRS of a Projected or Derived CRS, nil otherwise.
func (c *CRS) Base() *CRS { return c.base }

// Dimension returns the number of axes.
func (c *CRS) Dimension() int {
	if c == nil {
		return 0
	}

	return c.cs.Dimension()
}

// Components returns the single components of a compound CRS, or c itself.
func (c *CRS) Components() []*CRS {
	if c.kind == KindCompound {
		return append([]*CRS(nil), c.components...)
	}

	return []*CRS{c}
}

// Is3DGeographic reports whether c is a geographic CRS with an ellipsoidal height axis.
func (c *CRS) Is3DGeographic() bool {
	return c != nil && c.kind == KindGeographic && c.cs.Dimension() == 3
}

func (c *CRS) String() string {
	if c == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%s[%q, %dD]", c.kind, c.name, c.Dimension())
}

// Equal compares a and b under mode.
//
// Implementation:
//   - Stage 1: identity, nil and Kind checks; names only in Strict mode.
//   - Stage 2: compounds compare component by component.
//   - Stage 3: datums compare under mode; derived CRS compare their bases.
//   - Stage 4: coordinate systems compare axis by axis up to IgnoreMetadata;
//     looser modes accept any axis order and units reconciled by SwapAndScaleAxes.
func Equal(a, b *CRS, mode ComparisonMode) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	if mode == Strict && a.name != b.name {
		return false
	}
	if a.kind == KindCompound {
		if len(a.components) != len(b.components) {
			return false
		}
		for i, ca := range a.components {
			if !Equal(ca, b.components[i], mode) {
				return false
			}
		}

		return true
	}
	if (a.base == nil) != (b.base == nil) {
		return false
	}
	if a.base != nil && !Equal(a.base, b.base, mode) {
		return false
	}
	if !a.datum.Equal(b.datum, mode) {
		return false
	}
	if mode <= IgnoreMetadata {
		return a.cs.Equal(b.cs, mode)
	}
	if a.cs.Dimension() != b.cs.Dimension() {
		return false
	}
	_, err := SwapAndScaleAxes(a.cs, b.cs)

	return err == nil
}

// SelectDimensions returns the CRS made of the given sorted dimensions of c.
// Selected dimensions must cover whole components, except that the two
// horizontal axes of a 3-D geographic component may be selected alone.
func SelectDimensions(c *CRS, dims []int) (*CRS, error) {
	if c == nil || len(dims) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "SelectDimensions: nothing to select")
	}
	var picked []*CRS
	lower, k := 0, 0
	for _, comp := range c.Components() {
		upper := lower + comp.Dimension()
		var inside []int
		for k < len(dims) && dims[k] < upper {
			if dims[k] < lower {
				return nil, errors.Wrapf(ErrInvalidArgument, "SelectDimensions: unsorted dimensions %v", dims)
			}
			inside = append(inside, dims[k]-lower)
			k++
		}
		switch {
		case len(inside) == 0:
		case len(inside) == comp.Dimension():
			picked = append(picked, comp)
		case comp.Is3DGeographic() && len(inside) == 2 && isHorizontal(comp, inside):
			g, err := NewGeographic(comp.name+" (2D)", comp.datum, NewCoordinateSystem(comp.cs.Name,
				comp.cs.Axes[inside[0]], comp.cs.Axes[inside[1]]))
			if err != nil {
				return nil, err
			}
			picked = append(picked, g)
		default:
			return nil, errors.Wrapf(ErrInvalidArgument, "SelectDimensions: %v splits component %s", dims, comp)
		}
		lower = upper
	}
	if k != len(dims) {
		return nil, errors.Wrapf(ErrInvalidArgument, "SelectDimensions: %v outside %d dimensions", dims, c.Dimension())
	}
	if len(picked) == 1 {
		return picked[0], nil
	}
	names := make([]string, len(picked))
	for i, p := range picked {
		names[i] = p.name
	}

	return NewCompound(strings.Join(names, " + "), picked...)
}

func isHorizontal(c *CRS, local []int) bool {
	for _, i := range local {
		switch c.cs.Axes[i].Direction.Absolute() {
		case DirectionNorth, DirectionEast:
		default:
			return false
		}
	}

	return true
}
