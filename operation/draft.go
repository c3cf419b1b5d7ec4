// SPDX-License-Identifier: MIT

package operation

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/parameter"
)

// DraftKind selects the operation a Draft builds.
type DraftKind uint8

const (
	DraftConversion DraftKind = iota + 1
	DraftTransformation
	DraftConcatenated
	DraftPassThrough
)

func (k DraftKind) String() string {
	switch k {
	case DraftConversion:
		return "Conversion"
	case DraftTransformation:
		return "Transformation"
	case DraftConcatenated:
		return "ConcatenatedOperation"
	case DraftPassThrough:
		return "PassThroughOperation"
	}

	return "Unknown"
}

// Draft collects the properties of an operation decoded from an external
// document. Each property is taken once: a second assignment is logged and
// ignored so that a malformed document still loads. Build consumes the
// draft.
type Draft struct {
	kind     DraftKind
	props    Properties
	logger   *slog.Logger
	method   *Method
	params   *parameter.ValueGroup
	source   *crs.CRS
	target   *crs.CRS
	steps    []CoordinateOperation
	op       CoordinateOperation
	indices  []int
	accuracy bool
	built    bool
}

// NewDraft returns an empty draft of the given kind.
func NewDraft(kind DraftKind, name string, opts ...Option) *Draft {
	o := gatherOptions(opts)

	return &Draft{kind: kind, props: Properties{Name: name}, logger: o.logger}
}

// propertyAlreadySet reports a second assignment of property.
func (d *Draft) propertyAlreadySet(property string) {
	d.logger.Warn("property already set",
		slog.String("kind", d.kind.String()),
		slog.String("operation", d.props.Name),
		slog.String("property", property),
		slog.String("error", ErrPropertyAlreadySet.Error()))
}

// settable reports whether property may still be assigned.
func (d *Draft) settable(property string, isSet bool) bool {
	if isSet || d.built {
		d.propertyAlreadySet(property)
		return false
	}

	return true
}

// SetMethod sets the operation method.
func (d *Draft) SetMethod(m *Method) *Draft {
	if d.settable("method", d.method != nil) {
		d.method = m
	}

	return d
}

// SetParameters sets the parameter values.
func (d *Draft) SetParameters(g *parameter.ValueGroup) *Draft {
	if d.settable("parameters", d.params != nil) {
		d.params = g
	}

	return d
}

// SetSourceCRS sets the source CRS.
func (d *Draft) SetSourceCRS(c *crs.CRS) *Draft {
	if d.settable("sourceCRS", d.source != nil) {
		d.source = c
	}

	return d
}

// SetTargetCRS sets the target CRS.
func (d *Draft) SetTargetCRS(c *crs.CRS) *Draft {
	if d.settable("targetCRS", d.target != nil) {
		d.target = c
	}

	return d
}

// SetAccuracy sets the positional accuracy in metres.
func (d *Draft) SetAccuracy(metres float64) *Draft {
	if d.settable("accuracy", d.accuracy) {
		d.props.Accuracy = metres
		d.accuracy = true
	}

	return d
}

// SetSteps sets the steps of a concatenated operation.
func (d *Draft) SetSteps(steps ...CoordinateOperation) *Draft {
	if d.settable("steps", d.steps != nil) {
		d.steps = append(make([]CoordinateOperation, 0, len(steps)), steps...)
	}

	return d
}

// SetOperation sets the operation wrapped by a pass-through operation.
func (d *Draft) SetOperation(op CoordinateOperation) *Draft {
	if d.settable("coordOperation", d.op != nil) {
		d.op = op
	}

	return d
}

// SetIndices sets the source coordinates modified by a pass-through operation.
func (d *Draft) SetIndices(indices ...int) *Draft {
	if d.settable("modifiedCoordinate", d.indices != nil) {
		d.indices = append(make([]int, 0, len(indices)), indices...)
	}

	return d
}

// Build returns the operation. It may be called once; factory builds the
// transforms of conversions and transformations.
//
// Conversions without CRS are returned as defining conversions. A
// pass-through draft checks modifiedCoordinate, sourceCRS, targetCRS and
// coordOperation in that order, and specializes a defining conversion on
// the selected dimensions of its CRS.
func (d *Draft) Build(factory *MathTransformFactory) (CoordinateOperation, error) {
	if d.built {
		return nil, errors.Wrapf(ErrDraftConsumed, "%s %q", d.kind, d.props.Name)
	}
	d.built = true
	switch d.kind {
	case DraftConversion:
		return d.buildConversion(factory)
	case DraftTransformation:
		return d.buildTransformation(factory)
	case DraftConcatenated:
		c, err := NewConcatenated(d.props, d.steps...)
		if err != nil {
			return nil, err
		}

		return c, nil
	case DraftPassThrough:
		return d.buildPassThrough(factory)
	}

	return nil, errors.Wrapf(ErrInvalidArgument, "draft kind %d", d.kind)
}

func (d *Draft) buildConversion(factory *MathTransformFactory) (CoordinateOperation, error) {
	if d.method == nil {
		return nil, errors.Wrapf(ErrMissingComponent, "%q: method", d.props.Name)
	}
	params := d.params
	if params == nil {
		params = parameter.NewValueGroup(d.method.Parameters)
		if d.method.Parameters == nil {
			params = parameter.NewValueGroup(parameter.NewDescriptorGroup(d.method.Name))
		}
	}
	def, err := NewDefiningConversion(d.props, d.method, params)
	if err != nil {
		return nil, err
	}
	if d.source == nil && d.target == nil {
		return def, nil
	}
	if d.source == nil || d.target == nil {
		return nil, errors.Wrapf(ErrMissingComponent, "%q: %s", d.props.Name, missingCRS(d.source))
	}

	op, err := def.Specialize(d.source, d.target, factory)
	if err != nil {
		return nil, err
	}

	return op, nil
}

func missingCRS(source *crs.CRS) string {
	if source == nil {
		return "sourceCRS"
	}

	return "targetCRS"
}

func (d *Draft) buildTransformation(factory *MathTransformFactory) (CoordinateOperation, error) {
	switch {
	case d.method == nil:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: method", d.props.Name)
	case d.source == nil:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: sourceCRS", d.props.Name)
	case d.target == nil:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: targetCRS", d.props.Name)
	case factory == nil:
		return nil, errors.Wrapf(ErrInvalidArgument, "%q: nil factory", d.props.Name)
	}
	b, err := factory.Builder(d.method)
	if err != nil {
		return nil, errors.Wrapf(err, "%q", d.props.Name)
	}
	if err := b.SetParameters(d.params); err != nil {
		return nil, errors.Wrapf(err, "%q", d.props.Name)
	}
	b.SetSourceCRS(d.source)
	b.SetTargetCRS(d.target)
	mt, err := b.Create()
	if err != nil {
		return nil, errors.Wrapf(err, "%q", d.props.Name)
	}
	op, err := NewTransformation(d.props, d.source, d.target, d.method, nil, mt)
	if err != nil {
		return nil, err
	}
	if err := op.SetParameterValues(b.Parameters(), b.ContextualParameters()); err != nil {
		return nil, err
	}

	return op, nil
}

func (d *Draft) buildPassThrough(factory *MathTransformFactory) (CoordinateOperation, error) {
	switch {
	case len(d.indices) == 0:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: modifiedCoordinate", d.props.Name)
	case d.source == nil:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: sourceCRS", d.props.Name)
	case d.target == nil:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: targetCRS", d.props.Name)
	case d.op == nil:
		return nil, errors.Wrapf(ErrMissingComponent, "%q: coordOperation", d.props.Name)
	}
	op := d.op
	if single, ok := op.(*SingleOperation); ok && single.IsDefining() {
		src, err := crs.SelectDimensions(d.source, d.indices)
		if err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(ErrGeodetic, "%q: source of %q", d.props.Name, op.Name()), err)
		}
		tgt, err := crs.SelectDimensions(d.target, d.indices)
		if err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(ErrGeodetic, "%q: target of %q", d.props.Name, op.Name()), err)
		}
		if op, err = single.Specialize(src, tgt, factory); err != nil {
			return nil, errors.WithSecondaryError(errors.Wrapf(ErrGeodetic, "%q: specialize %q", d.props.Name, single.Name()), err)
		}
	}
	p, err := NewPassThroughIndices(d.props, d.source, d.target, op, d.indices)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrGeodetic, "%q", d.props.Name), err)
	}

	return p, nil
}
