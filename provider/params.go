// SPDX-License-Identifier: MIT

package provider

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
)

// Shared parameter descriptors, named after the EPSG dataset with the
// OGC names as aliases.
var (
	latitudeOfOrigin  = parameter.NewDescriptor("Latitude of natural origin", crs.Degree, 0, "latitude_of_origin")
	centralMeridian   = parameter.NewDescriptor("Longitude of natural origin", crs.Degree, 0, "central_meridian")
	scaleFactor       = parameter.NewDescriptor("Scale factor at natural origin", crs.Unity, 1, "scale_factor")
	falseEasting      = parameter.NewDescriptor("False easting", crs.Metre, 0, "false_easting", "FE")
	falseNorthing     = parameter.NewDescriptor("False northing", crs.Metre, 0, "false_northing", "FN")
	semiMajor         = parameter.NewRequired(operation.SemiMajor, crs.Metre, "Semi-major axis")
	inverseFlattening = parameter.NewRequired(operation.InverseFlattening, crs.Unity, "Inverse flattening")
	latitudeOffset    = parameter.NewDescriptor("Latitude offset", crs.Degree, 0, "dlat")
	longitudeOffset   = parameter.NewDescriptor("Longitude offset", crs.Degree, 0, "dlon")
)

// values reads the named parameters, falling back to their defaults.
func values(g *parameter.ValueGroup, descs ...*parameter.Descriptor) ([]float64, error) {
	out := make([]float64, len(descs))
	for i, d := range descs {
		v, err := g.Value(d.Name)
		if err != nil {
			return nil, err
		}
		if math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrInvalidParameter, "%q is infinite", d.Name)
		}
		out[i] = v
	}

	return out, nil
}
