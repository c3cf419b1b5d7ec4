// SPDX-License-Identifier: MIT
package provider_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/provider"
)

var (
	wgs84 = crs.MustCRS(crs.NewGeographic("WGS 84", crs.WGS84, crs.EllipsoidalLatLon))
	nad27 = crs.MustCRS(crs.NewGeographic("NAD27", crs.NAD27, crs.EllipsoidalLatLon))
	// metres per degree of longitude on the WGS 84 semi-major axis
	webDegree = 6378137 * math.Pi / 180
)

func factory(t *testing.T) *operation.MathTransformFactory {
	t.Helper()
	f, err := provider.NewFactory()
	require.NoError(t, err)

	return f
}

func apply(t *testing.T, op operation.CoordinateOperation, pt ...float64) []float64 {
	t.Helper()
	out := make([]float64, op.Transform().TargetDimensions())
	require.NoError(t, op.Transform().Transform(pt, out, 1))

	return out
}

// TestMercatorDefiningConversion: a defining conversion with two parameters
// is specialized on a geographic source and a projected target of the same
// datum; specializing again with the same CRS returns the same instance.
func TestMercatorDefiningConversion(t *testing.T) {
	f := factory(t)
	values := parameter.NewValueGroup(parameter.InferDescriptors("Mercator", "false_easting", "false_northing")).
		MustSet("false_easting", 1000).
		MustSet("false_northing", 2000)
	def, err := operation.NewDefiningConversion(operation.Properties{Name: "Web map"},
		&operation.Method{Name: "Pseudo Mercator"}, values)
	require.NoError(t, err)

	projected := crs.MustCRS(crs.NewProjected("WGS 84 / Pseudo-Mercator", wgs84, crs.CartesianEN))
	conv, err := def.Specialize(wgs84, projected, f)
	require.NoError(t, err)
	mt := conv.Transform()
	require.NotNil(t, mt)
	require.Equal(t, 2, mt.SourceDimensions())
	require.Equal(t, 2, mt.TargetDimensions())

	again, err := conv.Specialize(wgs84, projected, f)
	require.NoError(t, err)
	require.Same(t, conv, again)

	// (φ, λ) = (0, 1)
	require.InDeltaSlice(t, []float64{webDegree + 1000, 2000}, apply(t, conv, 0, 1), 1e-3)

	inv, err := conv.Inverse()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{45, 10}, apply(t, inv, apply(t, conv, 45, 10)...), 1e-8)
}

func TestTransverseMercator(t *testing.T) {
	f := factory(t)
	values := parameter.NewValueGroup(provider.TransverseMercatorMethod.Parameters).
		MustSet("central_meridian", 3).
		MustSet("scale_factor", 0.9996).
		MustSet("false_easting", 500000)
	def, err := operation.NewDefiningConversion(operation.Properties{Name: "UTM zone 31N"},
		provider.TransverseMercatorMethod, values)
	require.NoError(t, err)
	utm31 := crs.MustCRS(crs.NewProjected("WGS 84 / UTM zone 31N", wgs84, crs.CartesianEN))
	conv, err := def.Specialize(wgs84, utm31, f)
	require.NoError(t, err)

	// The central meridian on the equator is the false origin.
	require.InDeltaSlice(t, []float64{500000, 0}, apply(t, conv, 0, 3), 1e-3)

	// Easting is symmetric about the central meridian.
	east := apply(t, conv, 45, 4)
	west := apply(t, conv, 45, 2)
	require.InDelta(t, east[0]-500000, 500000-west[0], 1e-3)
	require.InDelta(t, east[1], west[1], 1e-3)
	require.Greater(t, east[1], 4.9e6)

	inv, err := conv.Inverse()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{45, 4}, apply(t, inv, east...), 1e-7)

	// Contextual ellipsoid parameters are declared by this method.
	a, err := conv.ParameterValues().Value(operation.SemiMajor)
	require.NoError(t, err)
	require.Equal(t, crs.WGS84Ellipsoid.SemiMajor, a)
}

func TestTransverseMercatorSphere(t *testing.T) {
	_, err := provider.TransverseMercator{}.Create(
		parameter.NewValueGroup(provider.TransverseMercatorMethod.Parameters).
			MustSet(operation.SemiMajor, 6371007).
			MustSet(operation.InverseFlattening, 0))
	require.ErrorIs(t, err, provider.ErrInvalidParameter)

	_, err = provider.TransverseMercator{}.Create(parameter.NewValueGroup(provider.TransverseMercatorMethod.Parameters))
	require.ErrorIs(t, err, parameter.ErrParameterNotFound)
}

func TestGeographicOffsets(t *testing.T) {
	f := factory(t)
	op, err := operation.NewDraft(operation.DraftTransformation, "NAD27 to WGS 84 (offsets)").
		SetMethod(provider.GeographicOffsetsMethod).
		SetParameters(parameter.NewValueGroup(provider.GeographicOffsetsMethod.Parameters).
			MustSet("dlat", 0.0001).
			MustSet("dlon", -0.0002)).
		SetAccuracy(10).
		SetSourceCRS(nad27).
		SetTargetCRS(wgs84).
		Build(f)
	require.NoError(t, err)
	require.Equal(t, 10.0, op.Accuracy())
	require.InDeltaSlice(t, []float64{45.0001, 2.9998}, apply(t, op, 45, 3), 1e-12)
}

func TestRegisterTwice(t *testing.T) {
	f := factory(t)
	require.ErrorIs(t, provider.Register(f), operation.ErrInvalidArgument)
	require.Len(t, f.Methods(), len(provider.All()))

	p, err := f.Provider("EPSG:9807")
	require.NoError(t, err)
	require.Same(t, provider.TransverseMercatorMethod, p.Method())
}
