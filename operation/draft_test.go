// SPDX-License-Identifier: MIT
package operation_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/operation"
	"github.com/katalvlaran/georef/parameter"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

// TestDraftPropertyOnce: a second assignment is logged and ignored.
func TestDraftPropertyOnce(t *testing.T) {
	logger, buf := captureLogger()
	values := parameter.NewValueGroup(equirectangularMethod.Parameters).MustSet("FE", 1000)
	d := operation.NewDraft(operation.DraftConversion, "zone", operation.WithLogger(logger)).
		SetMethod(equirectangularMethod).
		SetParameters(values).
		SetMethod(&operation.Method{Name: "Mercator"})
	require.Contains(t, buf.String(), "property already set")
	require.Contains(t, buf.String(), "property=method")

	op, err := d.Build(newFactory(t))
	require.NoError(t, err)
	def := op.(*operation.SingleOperation)
	require.True(t, def.IsDefining())
	require.Same(t, equirectangularMethod, def.Method())

	_, err = d.Build(newFactory(t))
	require.ErrorIs(t, err, operation.ErrDraftConsumed)

	buf.Reset()
	d.SetSourceCRS(wgs84LatLon)
	require.Contains(t, buf.String(), "property=sourceCRS")
}

func TestDraftConversion(t *testing.T) {
	values := parameter.NewValueGroup(equirectangularMethod.Parameters).MustSet("FE", 1000)
	op, err := operation.NewDraft(operation.DraftConversion, "zone").
		SetMethod(equirectangularMethod).
		SetParameters(values).
		SetSourceCRS(wgs84LatLon).
		SetTargetCRS(equirect).
		Build(newFactory(t))
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{degreeToMetre + 1000, 0}, transformPoint(t, op, 0, 1), 1e-6)

	_, err = operation.NewDraft(operation.DraftConversion, "half").
		SetMethod(equirectangularMethod).
		SetSourceCRS(wgs84LatLon).
		Build(newFactory(t))
	require.ErrorIs(t, err, operation.ErrMissingComponent)
	require.Contains(t, err.Error(), "targetCRS")

	_, err = operation.NewDraft(operation.DraftConversion, "none").Build(newFactory(t))
	require.ErrorIs(t, err, operation.ErrMissingComponent)
}

func TestDraftTransformation(t *testing.T) {
	nad27Equirect := crs.MustCRS(crs.NewProjected("NAD27 / Equirectangular", nad27LatLon, crs.CartesianEN))
	op, err := operation.NewDraft(operation.DraftTransformation, "NAD27 to WGS 84 grid").
		SetMethod(equirectangularMethod).
		SetAccuracy(2).
		SetSourceCRS(wgs84LatLon).
		SetTargetCRS(nad27Equirect).
		Build(newFactory(t))
	require.NoError(t, err)
	tr := op.(*operation.SingleOperation)
	require.Equal(t, operation.KindTransformation, tr.Kind())
	require.Equal(t, 2.0, tr.Accuracy())
	// semi_major is declared by the method, so it stays visible.
	require.True(t, tr.ParameterValues().IsSet(operation.SemiMajor))

	_, err = operation.NewDraft(operation.DraftTransformation, "x").SetMethod(equirectangularMethod).Build(newFactory(t))
	require.ErrorIs(t, err, operation.ErrMissingComponent)
	require.Contains(t, err.Error(), "sourceCRS")
}

func TestDraftConcatenated(t *testing.T) {
	a, b, c := chainFixture(t)
	op, err := operation.NewDraft(operation.DraftConcatenated, "ABC").SetSteps(a, b, c).Build(nil)
	require.NoError(t, err)
	require.Len(t, op.(*operation.ConcatenatedOperation).Steps(), 3)

	_, err = operation.NewDraft(operation.DraftConcatenated, "empty").Build(nil)
	require.ErrorIs(t, err, operation.ErrInvalidArgument)
}

// TestDraftPassThrough: components are checked in dependency order and a
// defining conversion is specialized on the selected dimensions.
func TestDraftPassThrough(t *testing.T) {
	source := crs.MustCRS(crs.NewCompound("WGS 84 + time", wgs84LatLon, julianTime))
	target := crs.MustCRS(crs.NewCompound("Equirectangular + time", equirect, julianTime))

	missing := []struct {
		name  string
		draft *operation.Draft
	}{
		{"modifiedCoordinate", operation.NewDraft(operation.DraftPassThrough, "p").
			SetSourceCRS(source).SetTargetCRS(target).SetOperation(definingEquirect(t))},
		{"sourceCRS", operation.NewDraft(operation.DraftPassThrough, "p").
			SetIndices(0, 1).SetTargetCRS(target)},
		{"targetCRS", operation.NewDraft(operation.DraftPassThrough, "p").
			SetIndices(0, 1).SetSourceCRS(source).SetOperation(definingEquirect(t))},
		{"coordOperation", operation.NewDraft(operation.DraftPassThrough, "p").
			SetIndices(0, 1).SetSourceCRS(source).SetTargetCRS(target)},
	}
	for _, tc := range missing {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.draft.Build(newFactory(t))
			require.ErrorIs(t, err, operation.ErrMissingComponent)
			require.Contains(t, err.Error(), tc.name)
		})
	}

	op, err := operation.NewDraft(operation.DraftPassThrough, "projected + time").
		SetIndices(0, 1).
		SetSourceCRS(source).
		SetTargetCRS(target).
		SetOperation(definingEquirect(t)).
		Build(newFactory(t))
	require.NoError(t, err)
	p := op.(*operation.PassThroughOperation)
	require.False(t, p.Operation().(*operation.SingleOperation).IsDefining())
	require.InDeltaSlice(t, []float64{500000, degreeToMetre, 2460000.5}, transformPoint(t, p, 1, 0, 2460000.5), 1e-6)

	_, err = operation.NewDraft(operation.DraftPassThrough, "split").
		SetIndices(0).
		SetSourceCRS(source).
		SetTargetCRS(target).
		SetOperation(definingEquirect(t)).
		Build(newFactory(t))
	require.ErrorIs(t, err, operation.ErrGeodetic)
}
