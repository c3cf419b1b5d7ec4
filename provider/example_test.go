// SPDX-License-Identifier: MIT
package provider_test

import (
	"fmt"
	"math"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/provider"
)

// ExampleTransverseMercator specializes a UTM defining conversion and
// chains it after a datum shift.
func ExampleTransverseMercator() {
	f, err := provider.NewFactory()
	if err != nil {
		panic(err)
	}
	ed50 := crs.MustCRS(crs.NewGeographic("ED50", crs.ED50, crs.EllipsoidalLatLon))
	wgs84 := crs.MustCRS(crs.NewGeographic("WGS 84", crs.WGS84, crs.EllipsoidalLatLon))
	utm31 := crs.MustCRS(crs.NewProjected("WGS 84 / UTM zone 31N", wgs84, crs.CartesianEN))

	shift, err := operation.NewDraft(operation.DraftTransformation, "ED50 to WGS 84").
		SetMethod(provider.GeographicOffsetsMethod).
		SetParameters(parameter.NewValueGroup(provider.GeographicOffsetsMethod.Parameters).
			MustSet("Longitude offset", -0.001)).
		SetSourceCRS(ed50).
		SetTargetCRS(wgs84).
		Build(f)
	if err != nil {
		panic(err)
	}
	utm, err := operation.NewDefiningConversion(operation.Properties{Name: "UTM zone 31N"},
		provider.TransverseMercatorMethod,
		parameter.NewValueGroup(provider.TransverseMercatorMethod.Parameters).
			MustSet("central_meridian", 3).
			MustSet("scale_factor", 0.9996).
			MustSet("false_easting", 500000))
	if err != nil {
		panic(err)
	}
	projection, err := utm.Specialize(wgs84, utm31, f)
	if err != nil {
		panic(err)
	}
	chain, err := operation.NewConcatenated(operation.Properties{Name: "ED50 to UTM 31N"}, shift, projection)
	if err != nil {
		panic(err)
	}

	pt := []float64{0, 3.001}
	if err := chain.Transform().Transform(pt, pt, 1); err != nil {
		panic(err)
	}
	fmt.Printf("E=%.1f on equator: %t\n", pt[0], math.Abs(pt[1]) < 1e-6)
	fmt.Println(len(chain.Steps()), chain.Accuracy())
	// Output:
	// E=500000.0 on equator: true
	// 2 0
}
