// SPDX-License-Identifier: MIT

package crs

import "strings"

// AxisDirection is the direction of a coordinate system axis.
type AxisDirection uint8

const (
	DirectionOther AxisDirection = iota
	DirectionNorth
	DirectionSouth
	DirectionEast
	DirectionWest
	DirectionUp
	DirectionDown
	DirectionFuture
	DirectionPast
	DirectionGeocentricX
	DirectionGeocentricY
	DirectionGeocentricZ
	DirectionColumnPositive
	DirectionColumnNegative
	DirectionRowPositive
	DirectionRowNegative
)

var directionNames = [...]string{
	"Other", "North", "South", "East", "West", "Up", "Down", "Future", "Past",
	"GeocentricX", "GeocentricY", "GeocentricZ",
	"ColumnPositive", "ColumnNegative", "RowPositive", "RowNegative",
}

func (d AxisDirection) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}

	return "Other"
}

// opposites pairs each direction with its reverse; zero means none.
var opposites = map[AxisDirection]AxisDirection{
	DirectionNorth: DirectionSouth, DirectionSouth: DirectionNorth,
	DirectionEast: DirectionWest, DirectionWest: DirectionEast,
	DirectionUp: DirectionDown, DirectionDown: DirectionUp,
	DirectionFuture: DirectionPast, DirectionPast: DirectionFuture,
	DirectionColumnPositive: DirectionColumnNegative, DirectionColumnNegative: DirectionColumnPositive,
	DirectionRowPositive: DirectionRowNegative, DirectionRowNegative: DirectionRowPositive,
}

// Absolute returns the "positive" direction of the pair d belongs to
// (North, East, Up, Future ...), so that North and South share an absolute.
func (d AxisDirection) Absolute() AxisDirection {
	switch d {
	case DirectionSouth, DirectionWest, DirectionDown, DirectionPast, DirectionColumnNegative, DirectionRowNegative:
		return opposites[d]
	}

	return d
}

// IsOpposite reports whether d points the other way of its absolute direction.
func (d AxisDirection) IsOpposite() bool { return d.Absolute() != d }

// RangeMeaning tells whether an axis range wraps around.
type RangeMeaning uint8

const (
	RangeExact RangeMeaning = iota
	RangeWraparound
)

// Axis is one coordinate system axis.
type Axis struct {
	Name         string
	Abbreviation string
	Direction    AxisDirection
	Unit         Unit
	Minimum      float64
	Maximum      float64
	RangeMeaning RangeMeaning
}

// Period returns the axis span when the range wraps around, 0 otherwise.
func (a Axis) Period() float64 {
	if a.RangeMeaning != RangeWraparound {
		return 0
	}

	return a.Maximum - a.Minimum
}

// Common axes.
var (
	AxisLatitude  = Axis{Name: "Geodetic latitude", Abbreviation: "φ", Direction: DirectionNorth, Unit: Degree, Minimum: -90, Maximum: 90}
	AxisLongitude = Axis{Name: "Geodetic longitude", Abbreviation: "λ", Direction: DirectionEast, Unit: Degree, Minimum: -180, Maximum: 180, RangeMeaning: RangeWraparound}
	AxisHeight    = Axis{Name: "Ellipsoidal height", Abbreviation: "h", Direction: DirectionUp, Unit: Metre}
	AxisEasting   = Axis{Name: "Easting", Abbreviation: "E", Direction: DirectionEast, Unit: Metre}
	AxisNorthing  = Axis{Name: "Northing", Abbreviation: "N", Direction: DirectionNorth, Unit: Metre}
	AxisGravity   = Axis{Name: "Gravity-related height", Abbreviation: "H", Direction: DirectionUp, Unit: Metre}
	AxisTime      = Axis{Name: "Time", Abbreviation: "t", Direction: DirectionFuture, Unit: Day}
	AxisX         = Axis{Name: "Geocentric X", Abbreviation: "X", Direction: DirectionGeocentricX, Unit: Metre}
	AxisY         = Axis{Name: "Geocentric Y", Abbreviation: "Y", Direction: DirectionGeocentricY, Unit: Metre}
	AxisZ         = Axis{Name: "Geocentric Z", Abbreviation: "Z", Direction: DirectionGeocentricZ, Unit: Metre}
)

// CoordinateSystem is an ordered list of axes.
type CoordinateSystem struct {
	Name string
	Axes []Axis
}

// NewCoordinateSystem returns a coordinate system over a copy of axes.
func NewCoordinateSystem(name string, axes ...Axis) *CoordinateSystem {
	return &CoordinateSystem{Name: name, Axes: append([]Axis(nil), axes...)}
}

// Common coordinate systems.
var (
	EllipsoidalLatLon       = NewCoordinateSystem("Ellipsoidal (φ, λ)", AxisLatitude, AxisLongitude)
	EllipsoidalLonLat       = NewCoordinateSystem("Ellipsoidal (λ, φ)", AxisLongitude, AxisLatitude)
	EllipsoidalLatLonHeight = NewCoordinateSystem("Ellipsoidal (φ, λ, h)", AxisLatitude, AxisLongitude, AxisHeight)
	CartesianEN             = NewCoordinateSystem("Cartesian (E, N)", AxisEasting, AxisNorthing)
	CartesianNE             = NewCoordinateSystem("Cartesian (N, E)", AxisNorthing, AxisEasting)
	CartesianXYZ            = NewCoordinateSystem("Cartesian (X, Y, Z)", AxisX, AxisY, AxisZ)
	VerticalUp              = NewCoordinateSystem("Vertical (H)", AxisGravity)
	TimeDays                = NewCoordinateSystem("Time (days)", AxisTime)
)

// Dimension returns the number of axes; nil has dimension 0.
func (cs *CoordinateSystem) Dimension() int {
	if cs == nil {
		return 0
	}

	return len(cs.Axes)
}

// Equal compares axes; names are ignored unless mode is Strict.
func (cs *CoordinateSystem) Equal(o *CoordinateSystem, mode ComparisonMode) bool {
	if cs == o {
		return true
	}
	if cs == nil || o == nil || len(cs.Axes) != len(o.Axes) {
		return false
	}
	if mode == Strict && cs.Name != o.Name {
		return false
	}
	for i, a := range cs.Axes {
		b := o.Axes[i]
		if a.Direction != b.Direction || a.Unit.Quantity != b.Unit.Quantity {
			return false
		}
		if !sameValue(a.Unit.ToBase, b.Unit.ToBase, mode) {
			return false
		}
		if mode <= ByContract && !strings.EqualFold(a.Name, b.Name) {
			return false
		}
	}

	return true
}
