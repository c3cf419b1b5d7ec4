// SPDX-License-Identifier: MIT
package operation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/transform"
)

var (
	wgs84LatLon   = crs.MustCRS(crs.NewGeographic("WGS 84", crs.WGS84, crs.EllipsoidalLatLon))
	wgs84LonLat   = crs.MustCRS(crs.NewGeographic("WGS 84 (λ, φ)", crs.WGS84, crs.EllipsoidalLonLat))
	wgs84LatLonH  = crs.MustCRS(crs.NewGeographic("WGS 84 (3D)", crs.WGS84, crs.EllipsoidalLatLonHeight))
	nad27LatLon   = crs.MustCRS(crs.NewGeographic("NAD27", crs.NAD27, crs.EllipsoidalLatLon))
	equirect      = crs.MustCRS(crs.NewProjected("WGS 84 / Equirectangular", wgs84LatLon, crs.CartesianEN))
	equirectNE    = crs.MustCRS(crs.NewProjected("WGS 84 / Equirectangular (N, E)", wgs84LatLon, crs.CartesianNE))
	ellipsoidalH  = crs.MustCRS(crs.NewVertical("WGS 84 ellipsoidal height", crs.WGS84, crs.VerticalUp))
	julianTime    = crs.MustCRS(crs.NewTemporal("Julian days", crs.JulianDS, crs.TimeDays))
	degreeToMetre = crs.WGS84Ellipsoid.A() * math.Pi / 180
)

// equirectangularMethod declares false origin offsets and the semi-major axis.
var equirectangularMethod = &operation.Method{
	Name:    "Equirectangular",
	Aliases: []string{"Plate Carree"},
	Parameters: parameter.NewDescriptorGroup("Equirectangular",
		parameter.NewDescriptor("false_easting", crs.Metre, 0, "FE"),
		parameter.NewDescriptor("false_northing", crs.Metre, 0, "FN"),
		parameter.NewRequired(operation.SemiMajor, crs.Metre, "a"),
	),
}

// equirectangular is a linear provider: E = a·λ·π/180 + FE, N = a·φ·π/180 + FN.
type equirectangular struct{}

func (equirectangular) Method() *operation.Method       { return equirectangularMethod }
func (equirectangular) SourceCS() *crs.CoordinateSystem { return crs.EllipsoidalLonLat }
func (equirectangular) TargetCS() *crs.CoordinateSystem { return crs.CartesianEN }

func (equirectangular) Create(v *parameter.ValueGroup) (transform.MathTransform, error) {
	a, err := v.Value(operation.SemiMajor)
	if err != nil {
		return nil, err
	}
	fe, _ := v.Value("false_easting")
	fn, _ := v.Value("false_northing")
	k := a * math.Pi / 180
	m, err := matrix.NewDenseFrom(3, 3, []float64{k, 0, fe, 0, k, fn, 0, 0, 1})
	if err != nil {
		return nil, err
	}

	return transform.NewLinear(m)
}

func newFactory(t *testing.T) *operation.MathTransformFactory {
	t.Helper()
	f := operation.NewMathTransformFactory()
	require.NoError(t, f.Register(equirectangular{}))

	return f
}

// definingEquirect has only the two false origin parameters, without descriptors.
func definingEquirect(t *testing.T) *operation.SingleOperation {
	t.Helper()
	values := parameter.NewValueGroup(parameter.InferDescriptors("Equirectangular", "false_easting", "false_northing")).
		MustSet("false_easting", 500000).
		MustSet("false_northing", 0)
	def, err := operation.NewDefiningConversion(operation.Properties{Name: "Equirectangular zone"},
		&operation.Method{Name: "Plate Carree"}, values)
	require.NoError(t, err)

	return def
}

func affineOp(t *testing.T, name string, source, target *crs.CRS, data ...float64) *operation.SingleOperation {
	t.Helper()
	n, m := source.Dimension(), target.Dimension()
	d, err := matrix.NewDenseFrom(m+1, n+1, data)
	require.NoError(t, err)
	op, err := operation.NewConversion(operation.Properties{Name: name}, source, target, operation.Affine, nil,
		transform.MustLinear(d))
	require.NoError(t, err)

	return op
}

func transformPoint(t *testing.T, op operation.CoordinateOperation, pt ...float64) []float64 {
	t.Helper()
	mt := op.Transform()
	require.NotNil(t, mt)
	out := make([]float64, mt.TargetDimensions())
	require.NoError(t, mt.Transform(pt, out, 1))

	return out
}

// TestSpecializeDefiningConversion: a defining conversion bound to a
// geographic source and a projected target of the same datum.
func TestSpecializeDefiningConversion(t *testing.T) {
	f := newFactory(t)
	def := definingEquirect(t)
	require.True(t, def.IsDefining())
	require.Nil(t, def.SourceCRS())

	conv, err := def.Specialize(wgs84LatLon, equirect, f)
	require.NoError(t, err)
	require.Equal(t, operation.KindProjection, conv.Kind())
	mt := conv.Transform()
	require.NotNil(t, mt)
	require.Equal(t, 2, mt.SourceDimensions())
	require.Equal(t, 2, mt.TargetDimensions())

	// (φ, λ) = (2, 1) → (E, N)
	require.InDeltaSlice(t, []float64{degreeToMetre + 500000, 2 * degreeToMetre}, transformPoint(t, conv, 2, 1), 1e-6)

	again, err := conv.Specialize(wgs84LatLon, equirect, f)
	require.NoError(t, err)
	require.Same(t, conv, again)

	// semi_major came from the ellipsoid and is not declared by the method.
	params := conv.ParameterValues()
	require.True(t, params.Frozen())
	require.True(t, params.IsSet("false_easting"))
	require.False(t, params.IsSet(operation.SemiMajor))
	require.Equal(t, "Plate Carree", conv.Method().Name)
}

// TestSpecializeAxisOrder: an operation with a transform is re-expressed
// on CRS with other axis orders.
func TestSpecializeAxisOrder(t *testing.T) {
	f := newFactory(t)
	conv, err := definingEquirect(t).Specialize(wgs84LatLon, equirect, f)
	require.NoError(t, err)

	swapped, err := conv.Specialize(wgs84LonLat, equirectNE, nil)
	require.NoError(t, err)
	require.NotSame(t, conv, swapped)
	require.InDeltaSlice(t, []float64{2 * degreeToMetre, degreeToMetre + 500000}, transformPoint(t, swapped, 1, 2), 1e-6)
}

func TestSpecializeErrors(t *testing.T) {
	f := newFactory(t)
	conv, err := definingEquirect(t).Specialize(wgs84LatLon, equirect, f)
	require.NoError(t, err)

	_, err = conv.Specialize(nad27LatLon, equirect, f)
	require.ErrorIs(t, err, operation.ErrMismatchedDatum)

	nad27Proj := crs.MustCRS(crs.NewProjected("NAD27 / Equirectangular", nad27LatLon, crs.CartesianEN))
	_, err = conv.Specialize(wgs84LatLon, nad27Proj, f)
	require.NoError(t, err, "projected targets are checked against the new source")

	_, err = definingEquirect(t).Specialize(wgs84LatLon, equirect, nil)
	require.ErrorIs(t, err, operation.ErrInvalidArgument)

	_, err = definingEquirect(t).Specialize(nil, equirect, f)
	require.ErrorIs(t, err, operation.ErrInvalidArgument)

	unknown, err := operation.NewDefiningConversion(operation.Properties{Name: "x"},
		&operation.Method{Name: "Lambert Conic Conformal (2SP)"}, parameter.NewValueGroup(parameter.InferDescriptors("LCC")))
	require.NoError(t, err)
	_, err = unknown.Specialize(wgs84LatLon, equirect, f)
	require.ErrorIs(t, err, operation.ErrMethodNotFound)

	tr, err := operation.NewTransformation(operation.Properties{Name: "NAD27 to WGS 84"}, nad27LatLon, wgs84LatLon,
		operation.Affine, nil, transform.Identity(2))
	require.NoError(t, err)
	_, err = tr.Specialize(nad27LatLon, wgs84LatLon, f)
	require.ErrorIs(t, err, operation.ErrInvalidArgument)
}

// TestSetParameterValuesContextual: contextual values are hidden unless the
// method declares them.
func TestSetParameterValuesContextual(t *testing.T) {
	definition := parameter.NewValueGroup(equirectangularMethod.Parameters).
		MustSet("false_easting", 10).
		MustSet(operation.SemiMajor, 6378137)
	contextual := map[string]bool{"a": true}

	declaring, err := operation.NewConversion(operation.Properties{Name: "declaring"}, wgs84LatLon, equirect,
		equirectangularMethod, nil, transform.Identity(2))
	require.NoError(t, err)
	require.NoError(t, declaring.SetParameterValues(definition, contextual))
	require.True(t, declaring.ParameterValues().IsSet(operation.SemiMajor))
	require.Same(t, equirectangularMethod, declaring.Method())

	bare, err := operation.NewConversion(operation.Properties{Name: "bare"}, wgs84LatLon, equirect,
		&operation.Method{Name: "Equirectangular"}, nil, transform.Identity(2))
	require.NoError(t, err)
	require.NoError(t, bare.SetParameterValues(definition, contextual))
	require.False(t, bare.ParameterValues().IsSet(operation.SemiMajor))
	require.True(t, bare.ParameterValues().IsSet("FE"))
	require.Same(t, equirectangularMethod.Parameters, bare.ParameterValues().Descriptor())

	require.ErrorIs(t, bare.SetParameterValues(definition, nil), operation.ErrPropertyAlreadySet)
	require.ErrorIs(t, bare.ParameterValues().SetValue("false_easting", 1), parameter.ErrUnmodifiable)
}

// TestSingleEqual: loose modes compare transforms, not methods.
func TestSingleEqual(t *testing.T) {
	a := affineOp(t, "a", wgs84LatLon, wgs84LonLat, 0, 1, 0, 1, 0, 0, 0, 0, 1)
	b, err := operation.NewConversion(operation.Properties{Name: "b"}, wgs84LatLon, wgs84LonLat,
		&operation.Method{Name: "Axis order reversal (2D)"}, nil, a.Transform())
	require.NoError(t, err)

	require.False(t, a.Equal(b, crs.ByContract))
	require.True(t, a.Equal(b, crs.IgnoreMetadata))
	require.True(t, operation.Equal(a, b, crs.Approximate))
	require.False(t, a.Equal(b, crs.Strict))
}

// TestEqualTolerance: Approximate comparisons use the configured tolerance
// on transform coefficients; other modes stay exact.
func TestEqualTolerance(t *testing.T) {
	a := affineOp(t, "a", wgs84LatLon, wgs84LatLon, 1, 0, 10, 0, 1, 20, 0, 0, 1)
	b := affineOp(t, "b", wgs84LatLon, wgs84LatLon, 1, 0, 10+1e-6, 0, 1, 20, 0, 0, 1)
	chainA, err := operation.NewConcatenated(operation.Properties{Name: "a, swap"}, a,
		affineOp(t, "swap", wgs84LatLon, wgs84LonLat, 0, 1, 0, 1, 0, 0, 0, 0, 1))
	require.NoError(t, err)
	chainB, err := operation.NewConcatenated(operation.Properties{Name: "b, swap"}, b,
		affineOp(t, "swap", wgs84LatLon, wgs84LonLat, 0, 1, 0, 1, 0, 0, 0, 0, 1))
	require.NoError(t, err)

	require.False(t, a.Equal(b, crs.Approximate))
	require.False(t, operation.Equal(a, b, crs.Approximate))
	require.True(t, operation.Equal(a, b, crs.Approximate, operation.WithTolerance(1e-5)))
	require.False(t, operation.Equal(a, b, crs.Compatibility, operation.WithTolerance(1e-5)))
	require.False(t, operation.Equal(chainA, chainB, crs.Approximate))
	require.True(t, operation.Equal(chainA, chainB, crs.Approximate, operation.WithTolerance(1e-5)))

	loose := operation.NewMathTransformFactory(operation.WithTolerance(1e-5))
	require.True(t, loose.Equal(a, b, crs.Approximate))
	require.False(t, operation.NewMathTransformFactory().Equal(a, b, crs.Approximate))
	require.Panics(t, func() { operation.WithTolerance(-1) })
}

func TestSingleInverse(t *testing.T) {
	op := affineOp(t, "shift", wgs84LatLon, wgs84LatLon, 1, 0, 1, 0, 1, -2, 0, 0, 1)
	inv, err := op.Inverse()
	require.NoError(t, err)
	require.Equal(t, "Inverse of shift", inv.Name())
	require.InDeltaSlice(t, []float64{9, 22}, transformPoint(t, inv, 10, 20), 1e-12)

	again, err := op.Inverse()
	require.NoError(t, err)
	require.Same(t, inv, again)

	back, err := inv.Inverse()
	require.NoError(t, err)
	require.Same(t, op, back)

	_, err = definingEquirect(t).Inverse()
	require.ErrorIs(t, err, operation.ErrInvalidArgument)
}

func TestNewConversionErrors(t *testing.T) {
	_, err := operation.NewConversion(operation.Properties{Name: "x"}, wgs84LatLon, nil, operation.Affine, nil,
		transform.Identity(2))
	require.ErrorIs(t, err, operation.ErrInvalidArgument)

	_, err = operation.NewConversion(operation.Properties{Name: "x"}, wgs84LatLonH, wgs84LatLon, operation.Affine, nil,
		transform.Identity(2))
	require.ErrorIs(t, err, operation.ErrInvalidGeodeticParameter)

	_, err = operation.NewDefiningConversion(operation.Properties{Name: "x"}, nil, nil)
	require.ErrorIs(t, err, operation.ErrInvalidArgument)
}

func TestFactory(t *testing.T) {
	f := newFactory(t)
	require.ErrorIs(t, f.Register(equirectangular{}), operation.ErrInvalidArgument)

	p, err := f.Provider("PLATE CARREE")
	require.NoError(t, err)
	require.Same(t, equirectangularMethod, p.Method())

	_, err = f.Provider("Mercator")
	require.ErrorIs(t, err, operation.ErrMethodNotFound)
	require.Len(t, f.Methods(), 1)

	b, err := f.Builder(&operation.Method{Name: "unknown", Aliases: []string{"Equirectangular"}})
	require.NoError(t, err)
	require.NoError(t, b.SetParameters(parameter.NewValueGroup(parameter.InferDescriptors("x", "FN")).MustSet("FN", 7)))
	require.Error(t, b.SetParameters(parameter.NewValueGroup(parameter.InferDescriptors("x", "k0")).MustSet("k0", 1)))
	b.SetSourceCRS(wgs84LatLonH)
	b.SetTargetCRS(equirect)
	mt, err := b.Create()
	require.NoError(t, err)
	require.Equal(t, 3, mt.SourceDimensions())
	require.Equal(t, 2, mt.TargetDimensions())
	require.True(t, b.ContextualParameters()[operation.SemiMajor])

	out := make([]float64, 2)
	require.NoError(t, mt.Transform([]float64{0, 0, 100}, out, 1))
	require.InDeltaSlice(t, []float64{0, 7}, out, 1e-9)
}
