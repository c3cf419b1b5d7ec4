// SPDX-License-Identifier: MIT

package provider

import (
	"github.com/cockroachdb/errors"
	"github.com/wroge/wgs84"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/transform"
)

// TransverseMercatorMethod is EPSG method 9807.
var TransverseMercatorMethod = &operation.Method{
	Name:    "Transverse Mercator",
	Aliases: []string{"EPSG:9807", "Gauss-Kruger"},
	Formula: "EPSG guidance note 7-2, JHS formulas",
	Parameters: parameter.NewDescriptorGroup("Transverse Mercator",
		latitudeOfOrigin, centralMeridian, scaleFactor, falseEasting, falseNorthing, semiMajor, inverseFlattening),
}

// TransverseMercator projects on the ellipsoid given by the semi_major and
// inverse_flattening parameters, usually completed from the CRS.
type TransverseMercator struct{}

var _ operation.Provider = TransverseMercator{}

func (TransverseMercator) Method() *operation.Method       { return TransverseMercatorMethod }
func (TransverseMercator) SourceCS() *crs.CoordinateSystem { return crs.EllipsoidalLonLat }
func (TransverseMercator) TargetCS() *crs.CoordinateSystem { return crs.CartesianEN }

// Create returns the projection kernel.
func (TransverseMercator) Create(g *parameter.ValueGroup) (transform.MathTransform, error) {
	v, err := values(g, latitudeOfOrigin, centralMeridian, scaleFactor, falseEasting, falseNorthing, semiMajor, inverseFlattening)
	if err != nil {
		return nil, errors.Wrap(err, "Transverse Mercator")
	}
	lat0, lon0, k0, fe, fn, a, fi := v[0], v[1], v[2], v[3], v[4], v[5], v[6]
	if !(a > 0) || !(fi > 1) {
		return nil, errors.Wrapf(ErrInvalidParameter, "Transverse Mercator: ellipsoid a=%g 1/f=%g", a, fi)
	}
	if !(k0 > 0) {
		return nil, errors.Wrapf(ErrInvalidParameter, "Transverse Mercator: scale factor %g", k0)
	}
	datum := wgs84.Datum{
		Spheroid: &crs.Ellipsoid{Name: "Transverse Mercator", SemiMajor: a, InverseFlattening: fi},
		Area:     wgs84.AreaFunc(func(lon, lat float64) bool { return true }),
	}
	geographic := datum.LonLat()
	projected := datum.TransverseMercator(lon0, lat0, k0, fe, fn)

	return transform.NewFunc("Transverse Mercator", 2, 2, v,
		planar(wgs84.Transform(geographic, projected)),
		planar(wgs84.Transform(projected, geographic))), nil
}

// planar adapts a 3-D wgs84 function to 2-D points at zero height.
func planar(f func(a, b, c float64) (a2, b2, c2 float64)) transform.PointFunc {
	return func(src, dst []float64) error {
		dst[0], dst[1], _ = f(src[0], src[1], 0)

		return nil
	}
}
