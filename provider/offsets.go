// SPDX-License-Identifier: MIT

package provider

import (
	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/transform"
)

// GeographicOffsetsMethod is EPSG method 9619 with offsets in degrees.
var GeographicOffsetsMethod = &operation.Method{
	Name:       "Geographic2D offsets",
	Aliases:    []string{"EPSG:9619"},
	Formula:    "φ' = φ + Δφ, λ' = λ + Δλ",
	Parameters: parameter.NewDescriptorGroup("Geographic2D offsets", latitudeOffset, longitudeOffset),
}

// GeographicOffsets is a datum shift adding constant offsets.
type GeographicOffsets struct{}

var _ operation.Provider = GeographicOffsets{}

func (GeographicOffsets) Method() *operation.Method       { return GeographicOffsetsMethod }
func (GeographicOffsets) SourceCS() *crs.CoordinateSystem { return crs.EllipsoidalLatLon }
func (GeographicOffsets) TargetCS() *crs.CoordinateSystem { return crs.EllipsoidalLatLon }

// Create returns the translation.
func (GeographicOffsets) Create(g *parameter.ValueGroup) (transform.MathTransform, error) {
	v, err := values(g, latitudeOffset, longitudeOffset)
	if err != nil {
		return nil, errors.Wrap(err, "Geographic2D offsets")
	}
	m, err := matrix.Translation(v)
	if err != nil {
		return nil, err
	}

	return transform.NewLinear(m)
}
