// SPDX-License-Identifier: MIT

// Package provider holds the operation methods plugged into an
// operation.MathTransformFactory: map projections computed by
// github.com/wroge/wgs84, and a geographic offsets transformation.
//
// Projection kernels take (longitude, latitude) in degrees and return
// (easting, northing) in metres; the factory wraps them with the axis
// swaps required by the CRS they are specialized on.
package provider
