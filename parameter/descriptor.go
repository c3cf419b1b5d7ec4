// SPDX-License-Identifier: MIT

package parameter

import (
	"math"
	"strings"
	"unicode"

	"github.com/katalvlaran/georef/crs"
)

// Descriptor describes one numeric parameter.
type Descriptor struct {
	Name     string
	Aliases  []string
	Unit     crs.Unit
	Default  float64 // NaN when the parameter has no default
	Optional bool
}

// NewDescriptor returns a descriptor with a default value.
func NewDescriptor(name string, unit crs.Unit, def float64, aliases ...string) *Descriptor {
	return &Descriptor{Name: name, Aliases: append([]string(nil), aliases...), Unit: unit, Default: def}
}

// NewRequired returns a descriptor without default.
func NewRequired(name string, unit crs.Unit, aliases ...string) *Descriptor {
	return NewDescriptor(name, unit, math.NaN(), aliases...)
}

// Matches reports whether name is the descriptor name or one of its aliases,
// ignoring case, spaces and punctuation.
func (d *Descriptor) Matches(name string) bool {
	key := NormalizeName(name)
	if NormalizeName(d.Name) == key {
		return true
	}
	for _, a := range d.Aliases {
		if NormalizeName(a) == key {
			return true
		}
	}

	return false
}

// Shares reports whether d and o have a name or alias in common.
func (d *Descriptor) Shares(o *Descriptor) bool {
	if o.Matches(d.Name) {
		return true
	}
	for _, a := range d.Aliases {
		if o.Matches(a) {
			return true
		}
	}

	return false
}

// DescriptorGroup is the ordered set of parameters expected by a method.
type DescriptorGroup struct {
	Name        string
	Descriptors []*Descriptor
}

// NewDescriptorGroup returns a group over a copy of descs.
func NewDescriptorGroup(name string, descs ...*Descriptor) *DescriptorGroup {
	return &DescriptorGroup{Name: name, Descriptors: append([]*Descriptor(nil), descs...)}
}

// Descriptor returns the descriptor matching name, or nil.
func (g *DescriptorGroup) Descriptor(name string) *Descriptor {
	if g == nil {
		return nil
	}
	for _, d := range g.Descriptors {
		if d.Matches(name) {
			return d
		}
	}

	return nil
}

// Declares reports whether some descriptor of g shares a name or alias with d.
func (g *DescriptorGroup) Declares(d *Descriptor) bool {
	if g == nil {
		return false
	}
	for _, x := range g.Descriptors {
		if x.Shares(d) {
			return true
		}
	}

	return false
}

// NormalizeName keeps letters and digits, lower-cased.
func NormalizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	return sb.String()
}

var unitless = crs.Unity
