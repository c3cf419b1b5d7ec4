// SPDX-License-Identifier: MIT

package operation

import (
	"github.com/katalvlaran/georef/parameter"
)

// Method describes an operation algorithm and the parameters it expects.
type Method struct {
	Name       string
	Aliases    []string
	Formula    string
	Parameters *parameter.DescriptorGroup // nil when unknown
}

// Matches reports whether name is the method name or an alias, ignoring
// case, spaces and punctuation.
func (m *Method) Matches(name string) bool {
	if m == nil {
		return false
	}
	key := parameter.NormalizeName(name)
	if parameter.NormalizeName(m.Name) == key {
		return true
	}
	for _, a := range m.Aliases {
		if parameter.NormalizeName(a) == key {
			return true
		}
	}

	return false
}

// SameAs reports whether m and o share a name or alias.
func (m *Method) SameAs(o *Method) bool {
	if m == nil || o == nil {
		return m == o
	}
	if o.Matches(m.Name) {
		return true
	}
	for _, a := range m.Aliases {
		if o.Matches(a) {
			return true
		}
	}

	return false
}

func (m *Method) String() string {
	if m == nil {
		return "<nil>"
	}

	return m.Name
}

// CompleteMethod returns m, or a copy of m whose parameter descriptors are
// taken from values when m declares none.
func CompleteMethod(m *Method, values *parameter.ValueGroup) *Method {
	if m == nil || m.Parameters != nil || values == nil || values.Descriptor() == nil {
		return m
	}
	c := *m
	c.Aliases = append([]string(nil), m.Aliases...)
	c.Parameters = values.Descriptor()

	return &c
}

// Affine is the method of operations defined by a matrix, such as axis
// changes or constant coordinates.
var Affine = &Method{
	Name:    "Affine parametric transformation",
	Aliases: []string{"Affine"},
	Formula: "Matrix product of homogeneous coordinates",
}
