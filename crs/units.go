// SPDX-License-Identifier: MIT

package crs

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Quantity is the physical quantity a unit measures.
type Quantity uint8

const (
	QuantityNone Quantity = iota
	QuantityAngle
	QuantityLength
	QuantityTime
	QuantityScale
)

// Unit is a unit of measure with its factor to the quantity's base unit
// (radian, metre, second, unity).
type Unit struct {
	Name     string
	Quantity Quantity
	ToBase   float64
}

// Predefined units.
var (
	Radian    = Unit{Name: "radian", Quantity: QuantityAngle, ToBase: 1}
	Degree    = Unit{Name: "degree", Quantity: QuantityAngle, ToBase: math.Pi / 180}
	Grad      = Unit{Name: "grad", Quantity: QuantityAngle, ToBase: math.Pi / 200}
	Metre     = Unit{Name: "metre", Quantity: QuantityLength, ToBase: 1}
	Kilometre = Unit{Name: "kilometre", Quantity: QuantityLength, ToBase: 1000}
	Foot      = Unit{Name: "foot", Quantity: QuantityLength, ToBase: 0.3048}
	Second    = Unit{Name: "second", Quantity: QuantityTime, ToBase: 1}
	Day       = Unit{Name: "day", Quantity: QuantityTime, ToBase: 86400}
	Unity     = Unit{Name: "unity", Quantity: QuantityScale, ToBase: 1}
)

// ConversionFactor returns the factor converting values in u to values in target.
func (u Unit) ConversionFactor(target Unit) (float64, error) {
	if u.Quantity != target.Quantity || target.ToBase == 0 {
		return 0, errors.Wrapf(ErrIncompatibleUnit, "%s → %s", u.Name, target.Name)
	}
	if u.ToBase == target.ToBase {
		return 1, nil
	}

	return u.ToBase / target.ToBase, nil
}

func (u Unit) String() string { return u.Name }
