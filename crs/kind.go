// SPDX-License-Identifier: MIT

package crs

// Kind is the closed set of CRS variants.
type Kind uint8

const (
	KindGeographic Kind = iota + 1
	KindGeocentric
	KindProjected
	KindVertical
	KindTemporal
	KindEngineering
	KindDerived
	KindCompound
)

var kindNames = [...]string{
	KindGeographic:  "Geographic",
	KindGeocentric:  "Geocentric",
	KindProjected:   "Projected",
	KindVertical:    "Vertical",
	KindTemporal:    "Temporal",
	KindEngineering: "Engineering",
	KindDerived:     "Derived",
	KindCompound:    "Compound",
}

// String returns the variant name.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}

	return "Unknown"
}

// IsGeodetic reports whether the kind is anchored on a geodetic datum
// (geographic, geocentric, or projected on top of one).
func (k Kind) IsGeodetic() bool {
	return k == KindGeographic || k == KindGeocentric || k == KindProjected
}

// IsDerivedFromBase reports whether the CRS is defined by a conversion from a base CRS.
func (k Kind) IsDerivedFromBase() bool {
	return k == KindProjected || k == KindDerived
}

// ComparisonMode is the strictness used when comparing objects, from the
// most to the least strict.
type ComparisonMode uint8

const (
	// Strict compares every property, names included.
	Strict ComparisonMode = iota
	// ByContract compares the properties exposed through the public contract.
	ByContract
	// IgnoreMetadata ignores names, identifiers and remarks.
	IgnoreMetadata
	// Compatibility additionally ignores axis order and units when a simple
	// swap or scale reconciles them.
	Compatibility
	// Approximate additionally tolerates small numeric differences.
	Approximate
)

var modeNames = [...]string{"Strict", "ByContract", "IgnoreMetadata", "Compatibility", "Approximate"}

func (m ComparisonMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}

	return "Unknown"
}

// ApproximateTolerance is the relative tolerance of Approximate comparisons.
const ApproximateTolerance = 1e-9
