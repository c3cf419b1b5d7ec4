// SPDX-License-Identifier: MIT
package operation_test

import (
	"fmt"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/operation"
)

// ExampleCreateCompoundOperation drops the horizontal coordinates of a
// 3-D geographic CRS and moves time first.
func ExampleCreateCompoundOperation() {
	geo3D := crs.MustCRS(crs.NewGeographic("WGS 84 (3D)", crs.WGS84, crs.EllipsoidalLatLonHeight))
	time := crs.MustCRS(crs.NewTemporal("Julian days", crs.JulianDS, crs.TimeDays))
	height := crs.MustCRS(crs.NewVertical("WGS 84 ellipsoidal height", crs.WGS84, crs.VerticalUp))
	source := crs.MustCRS(crs.NewCompound("WGS 84 (3D) + time", geo3D, time))
	target := crs.MustCRS(crs.NewCompound("time + height", time, height))

	op, err := operation.CreateCompoundOperation(operation.AxisChangeFinder{}, source, target, nil)
	if err != nil {
		panic(err)
	}
	pt := []float64{45, 3, 120, 2460000.5}
	out := make([]float64, 2)
	if err := op.Transform().Transform(pt, out, 1); err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output:
	// [2.4600005e+06 120]
}
