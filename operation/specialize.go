// SPDX-License-Identifier: MIT

package operation

import (
	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// Specialize returns this conversion bound to source and target.
//
// Implementation:
//   - Stage 1: reject transformations; a datum change is not a specialization.
//   - Stage 2: the new source must share the datum of the previous source.
//     The new target must share the datum of the previous target, except
//     for derived and projected targets which are checked against the new
//     source instead.
//   - Stage 3: return op itself when nothing would change.
//   - Stage 4: a defining conversion builds its transform from parameters
//     through factory; otherwise axis swap and scale matrices are wrapped
//     around the existing transform.
//
// Errors:
//   - ErrMismatchedDatum on a datum change.
//   - ErrInvalidArgument on nil CRS, or a nil factory when one is needed.
//   - ErrMethodNotFound when no provider implements the method.
func (op *SingleOperation) Specialize(source, target *crs.CRS, factory *MathTransformFactory) (*SingleOperation, error) {
	if op.kind == KindTransformation {
		return nil, errors.Wrapf(ErrInvalidArgument, "Specialize: %q is a transformation", op.props.Name)
	}
	if source == nil || target == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "Specialize %q: nil CRS", op.props.Name)
	}
	if err := checkDatum("source", op.source, source); err != nil {
		return nil, err
	}
	if target.Kind().IsDerivedFromBase() {
		if err := checkDatum("target", source, op.target); err != nil {
			return nil, err
		}
	} else if err := checkDatum("target", op.target, target); err != nil {
		return nil, err
	}
	kind := conversionKind(target)
	if source == op.source && target == op.target && op.mt != nil && kind == op.kind {
		return op, nil
	}

	return op.specialized(kind, source, target, factory)
}

// checkDatum verifies that actual has the datum of expected. Missing CRS or
// datums are not checked.
func checkDatum(role string, expected, actual *crs.CRS) error {
	if expected == nil || actual == nil {
		return nil
	}
	de, da := expected.Datum(), actual.Datum()
	if de == nil || da == nil || de.EqualsIgnoreMetadata(da) {
		return nil
	}

	return errors.Wrapf(ErrMismatchedDatum, "%s CRS %q uses %q instead of %q", role, actual.Name(), da.Name, de.Name)
}

func (op *SingleOperation) specialized(kind Kind, source, target *crs.CRS, factory *MathTransformFactory) (*SingleOperation, error) {
	out := &SingleOperation{props: op.props, kind: kind, method: op.method, source: source, target: target}
	if op.mt == nil {
		if factory == nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "Specialize %q: a factory is needed to build the transform", op.props.Name)
		}
		b, err := factory.Builder(op.method)
		if err != nil {
			return nil, errors.Wrapf(err, "Specialize %q", op.props.Name)
		}
		if err := b.SetParameters(op.params); err != nil {
			return nil, errors.Wrapf(err, "Specialize %q", op.props.Name)
		}
		b.SetSourceCRS(source)
		b.SetTargetCRS(target)
		if out.mt, err = b.Create(); err != nil {
			return nil, errors.Wrapf(err, "Specialize %q", op.props.Name)
		}
		if err := out.SetParameterValues(b.Parameters(), b.ContextualParameters()); err != nil {
			return nil, err
		}

		return out, nil
	}
	if op.source == nil || op.target == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "Specialize %q: transform without CRS", op.props.Name)
	}
	before, err := crs.SwapAndScaleAxes(source.CoordinateSystem(), op.source.CoordinateSystem())
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidGeodeticParameter, "Specialize %q: source axes", op.props.Name), err)
	}
	if ip := op.props.Interpolation; ip != nil {
		if before, err = matrix.CreatePassThrough(ip.Dimension(), before, 0); err != nil {
			return nil, errors.Wrapf(err, "Specialize %q", op.props.Name)
		}
	}
	after, err := crs.SwapAndScaleAxes(op.target.CoordinateSystem(), target.CoordinateSystem())
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidGeodeticParameter, "Specialize %q: target axes", op.props.Name), err)
	}
	b, err := transform.NewLinear(before)
	if err != nil {
		return nil, err
	}
	a, err := transform.NewLinear(after)
	if err != nil {
		return nil, err
	}
	if out.mt, err = transform.ConcatenateAll(b, op.mt, a); err != nil {
		return nil, errors.Wrapf(err, "Specialize %q", op.props.Name)
	}
	out.params = op.params

	return out, nil
}
