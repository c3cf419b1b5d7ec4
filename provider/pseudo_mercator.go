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

// PseudoMercatorMethod is EPSG method 1024, the spherical Mercator of web
// maps, with a false origin.
var PseudoMercatorMethod = &operation.Method{
	Name:       "Popular Visualisation Pseudo Mercator",
	Aliases:    []string{"EPSG:1024", "Pseudo Mercator", "Web Mercator"},
	Formula:    "Spherical Mercator on the WGS 84 semi-major axis",
	Parameters: parameter.NewDescriptorGroup("Popular Visualisation Pseudo Mercator", falseEasting, falseNorthing),
}

// PseudoMercator projects WGS 84 longitude and latitude with
// wgs84.WebMercator, then adds the false origin.
type PseudoMercator struct{}

var _ operation.Provider = PseudoMercator{}

func (PseudoMercator) Method() *operation.Method       { return PseudoMercatorMethod }
func (PseudoMercator) SourceCS() *crs.CoordinateSystem { return crs.EllipsoidalLonLat }
func (PseudoMercator) TargetCS() *crs.CoordinateSystem { return crs.CartesianEN }

// Create returns the projection kernel.
func (PseudoMercator) Create(g *parameter.ValueGroup) (transform.MathTransform, error) {
	v, err := values(g, falseEasting, falseNorthing)
	if err != nil {
		return nil, errors.Wrap(err, "Pseudo Mercator")
	}
	fe, fn := v[0], v[1]
	forward := wgs84.LonLat().To(wgs84.WebMercator())
	reverse := wgs84.WebMercator().To(wgs84.LonLat())

	return transform.NewFunc("Pseudo Mercator", 2, 2, v,
		func(src, dst []float64) error {
			e, n, _ := forward(src[0], src[1], 0)
			dst[0], dst[1] = e+fe, n+fn

			return nil
		},
		func(src, dst []float64) error {
			dst[0], dst[1], _ = reverse(src[0]-fe, src[1]-fn, 0)

			return nil
		}), nil
}
