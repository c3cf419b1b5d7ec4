// SPDX-License-Identifier: MIT

package crs

import (
	"math"
	"strings"
	"unicode"
)

// Ellipsoid is a reference ellipsoid. It satisfies the spheroid contract
// of github.com/wroge/wgs84 (A and Fi) so providers can use it directly.
type Ellipsoid struct {
	Name              string
	SemiMajor         float64 // metres
	InverseFlattening float64 // 0 or +Inf for a sphere
}

// Common ellipsoids.
var (
	WGS84Ellipsoid = &Ellipsoid{Name: "WGS 84", SemiMajor: 6378137, InverseFlattening: 298.257223563}
	GRS80          = &Ellipsoid{Name: "GRS 1980", SemiMajor: 6378137, InverseFlattening: 298.257222101}
	International  = &Ellipsoid{Name: "International 1924", SemiMajor: 6378388, InverseFlattening: 297}
	Clarke1866     = &Ellipsoid{Name: "Clarke 1866", SemiMajor: 6378206.4, InverseFlattening: 294.978698213898}
	Sphere         = &Ellipsoid{Name: "Sphere", SemiMajor: 6371007, InverseFlattening: 0}
)

// A returns the semi-major axis length.
func (e *Ellipsoid) A() float64 { return e.SemiMajor }

// Fi returns the inverse flattening.
func (e *Ellipsoid) Fi() float64 { return e.InverseFlattening }

// IsSphere reports whether the ellipsoid has no flattening.
func (e *Ellipsoid) IsSphere() bool {
	return e.InverseFlattening == 0 || math.IsInf(e.InverseFlattening, 1)
}

// SemiMinor returns the semi-minor axis length.
func (e *Ellipsoid) SemiMinor() float64 {
	if e.IsSphere() {
		return e.SemiMajor
	}

	return e.SemiMajor * (1 - 1/e.InverseFlattening)
}

// Equal compares axis lengths; the name only matters in Strict mode.
func (e *Ellipsoid) Equal(o *Ellipsoid, mode ComparisonMode) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil {
		return false
	}
	if mode == Strict && e.Name != o.Name {
		return false
	}
	if e.IsSphere() && o.IsSphere() {
		return sameValue(e.SemiMajor, o.SemiMajor, mode)
	}

	return sameValue(e.SemiMajor, o.SemiMajor, mode) && sameValue(e.InverseFlattening, o.InverseFlattening, mode)
}

// Datum is a geodetic, vertical, temporal or engineering datum. A datum
// with Members is a datum ensemble.
type Datum struct {
	Name          string
	Identifier    string // authority code such as "EPSG:6326", optional
	Ellipsoid     *Ellipsoid
	PrimeMeridian float64 // Greenwich longitude in degrees
	Origin        float64 // temporal datum epoch (days), ignored otherwise
	Members       []*Datum
}

// Common datums.
var (
	WGS84    = &Datum{Name: "World Geodetic System 1984", Identifier: "EPSG:6326", Ellipsoid: WGS84Ellipsoid}
	NAD83    = &Datum{Name: "North American Datum 1983", Identifier: "EPSG:6269", Ellipsoid: GRS80}
	ED50     = &Datum{Name: "European Datum 1950", Identifier: "EPSG:6230", Ellipsoid: International}
	NAD27    = &Datum{Name: "North American Datum 1927", Identifier: "EPSG:6267", Ellipsoid: Clarke1866}
	MeanSea  = &Datum{Name: "Mean Sea Level", Identifier: "EPSG:5100"}
	JulianDS = &Datum{Name: "Julian", Origin: -2440587.5}
)

// EqualsIgnoreMetadata reports whether d and o designate the same reference
// frame: same identity (identifier, or name when an identifier is missing),
// same ellipsoid and prime meridian, and pairwise equal ensemble members.
func (d *Datum) EqualsIgnoreMetadata(o *Datum) bool {
	return d.Equal(o, IgnoreMetadata)
}

// Equal compares two datums under mode.
func (d *Datum) Equal(o *Datum, mode ComparisonMode) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	if mode == Strict && (d.Name != o.Name || d.Identifier != o.Identifier) {
		return false
	}
	if !sameIdentity(d, o) {
		return false
	}
	if (d.Ellipsoid == nil) != (o.Ellipsoid == nil) {
		return false
	}
	if d.Ellipsoid != nil && !d.Ellipsoid.Equal(o.Ellipsoid, mode) {
		return false
	}
	if !sameValue(d.PrimeMeridian, o.PrimeMeridian, mode) || !sameValue(d.Origin, o.Origin, mode) {
		return false
	}
	if len(d.Members) != len(o.Members) {
		return false
	}
	for i, m := range d.Members {
		if !m.Equal(o.Members[i], mode) {
			return false
		}
	}

	return true
}

// sameIdentity compares identifiers when both are present, names otherwise.
func sameIdentity(a, b *Datum) bool {
	if a.Identifier != "" && b.Identifier != "" {
		return strings.EqualFold(a.Identifier, b.Identifier)
	}

	return normalizeName(a.Name) == normalizeName(b.Name)
}

// normalizeName keeps letters and digits, lower-cased, so that
// "World Geodetic System 1984" matches "World_Geodetic_System_1984".
func normalizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	return sb.String()
}

// sameValue compares exactly, or within ApproximateTolerance in Approximate mode.
func sameValue(a, b float64, mode ComparisonMode) bool {
	if a == b || (math.IsNaN(a) && math.IsNaN(b)) {
		return true
	}
	if mode < Approximate {
		return false
	}

	return math.Abs(a-b) <= ApproximateTolerance*math.Max(math.Abs(a), math.Abs(b))
}
