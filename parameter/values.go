// SPDX-License-Identifier: MIT

package parameter

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// Value is one parameter value.
type Value struct {
	Descriptor *Descriptor
	Value      float64
}

// ValueGroup holds values for a descriptor group.
type ValueGroup struct {
	descriptor *DescriptorGroup
	values     []Value // explicitly set values, in descriptor order of first set
	frozen     bool
}

// NewValueGroup returns an empty, modifiable group for desc.
func NewValueGroup(desc *DescriptorGroup) *ValueGroup {
	return &ValueGroup{descriptor: desc}
}

// InferDescriptors builds a descriptor group from bare names, used when
// values arrive without their method definition.
func InferDescriptors(name string, names ...string) *DescriptorGroup {
	descs := make([]*Descriptor, len(names))
	for i, n := range names {
		descs[i] = NewRequired(n, unitless)
	}

	return NewDescriptorGroup(name, descs...)
}

// Descriptor returns the descriptor group.
func (g *ValueGroup) Descriptor() *DescriptorGroup { return g.descriptor }

// Frozen reports whether the group rejects mutation.
func (g *ValueGroup) Frozen() bool { return g.frozen }

// SetValue assigns v to the parameter matching name.
func (g *ValueGroup) SetValue(name string, v float64) error {
	if g.frozen {
		return errors.Wrapf(ErrUnmodifiable, "set %q", name)
	}
	d := g.descriptor.Descriptor(name)
	if d == nil {
		return errors.Wrapf(ErrParameterNotFound, "%q in %q", name, g.descriptor.Name)
	}
	if math.IsNaN(v) {
		return errors.Wrapf(ErrInvalidValue, "%q is NaN", name)
	}
	for i := range g.values {
		if g.values[i].Descriptor == d {
			g.values[i].Value = v
			return nil
		}
	}
	g.values = append(g.values, Value{Descriptor: d, Value: v})

	return nil
}

// MustSet is SetValue for fixtures known to be valid; it panics on error.
func (g *ValueGroup) MustSet(name string, v float64) *ValueGroup {
	if err := g.SetValue(name, v); err != nil {
		panic(err)
	}

	return g
}

// Value returns the value of the parameter matching name, falling back to
// the descriptor default.
func (g *ValueGroup) Value(name string) (float64, error) {
	for _, v := range g.values {
		if v.Descriptor.Matches(name) {
			return v.Value, nil
		}
	}
	if d := g.descriptor.Descriptor(name); d != nil && !math.IsNaN(d.Default) {
		return d.Default, nil
	}

	return math.NaN(), errors.Wrapf(ErrParameterNotFound, "no value for %q", name)
}

// IsSet reports whether a value was explicitly assigned to name.
func (g *ValueGroup) IsSet(name string) bool {
	for _, v := range g.values {
		if v.Descriptor.Matches(name) {
			return true
		}
	}

	return false
}

// Values returns a copy of the explicitly set values.
func (g *ValueGroup) Values() []Value {
	return append([]Value(nil), g.values...)
}

// Clone returns a modifiable copy.
func (g *ValueGroup) Clone() *ValueGroup {
	return &ValueGroup{descriptor: g.descriptor, values: g.Values()}
}

// Unmodifiable returns a frozen snapshot of g hiding every value whose
// descriptor matches exclude. A nil exclude hides nothing.
func Unmodifiable(g *ValueGroup, exclude func(*Descriptor) bool) *ValueGroup {
	if g == nil {
		return nil
	}
	if g.frozen && exclude == nil {
		return g
	}
	out := &ValueGroup{descriptor: g.descriptor, frozen: true}
	for _, v := range g.values {
		if exclude != nil && exclude(v.Descriptor) {
			continue
		}
		out.values = append(out.values, v)
	}

	return out
}

// Equal compares descriptor group names and values, in any order.
func (g *ValueGroup) Equal(o *ValueGroup, tol float64) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil || len(g.values) != len(o.values) {
		return false
	}
	if NormalizeName(g.descriptor.Name) != NormalizeName(o.descriptor.Name) {
		return false
	}
	for _, v := range g.values {
		w, err := o.Value(v.Descriptor.Name)
		if err != nil || !o.IsSet(v.Descriptor.Name) || math.Abs(v.Value-w) > tol {
			return false
		}
	}

	return true
}

func (g *ValueGroup) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[", g.descriptor.Name)
	for i, v := range g.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%g", v.Descriptor.Name, v.Value)
	}
	sb.WriteString("]")

	return sb.String()
}
