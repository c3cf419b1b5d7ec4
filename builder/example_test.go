// SPDX-License-Identifier: MIT
package builder_test

import (
	"fmt"

	"github.com/katalvlaran/georef/builder"
)

// ExampleLocalizationGridBuilder builds the transform of a 2×2 affine grid.
func ExampleLocalizationGridBuilder() {
	b, _ := builder.NewLocalizationGridBuilder(2, 2)
	_ = b.SetControlPoint(0, 0, 100, 50)
	_ = b.SetControlPoint(1, 0, 110, 50)
	_ = b.SetControlPoint(0, 1, 100, 45)
	_ = b.SetControlPoint(1, 1, 110, 45)

	mt, err := b.Create()
	if err != nil {
		fmt.Println(err)
		return
	}
	pt := []float64{0.5, 0.5}
	_ = mt.Transform(pt, pt, 1)
	fmt.Printf("%.1f %.1f\n", pt[0], pt[1])
	fmt.Println(b.Correlation())
	// Output:
	// 105.0 47.5
	// [1 1]
}
