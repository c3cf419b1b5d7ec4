// SPDX-License-Identifier: MIT

package operation

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/parameter"
	"github.com/katalvlaran/georef/transform"
)

// Kind tells conversions, map projections and transformations apart.
type Kind uint8

const (
	// KindConversion is an exact operation without datum change.
	KindConversion Kind = iota + 1
	// KindProjection is a conversion whose target is a projected CRS.
	KindProjection
	// KindTransformation changes datum and carries an accuracy.
	KindTransformation
)

func (k Kind) String() string {
	switch k {
	case KindConversion:
		return "Conversion"
	case KindProjection:
		return "Projection"
	case KindTransformation:
		return "Transformation"
	}

	return "Unknown"
}

// conversionKind returns the kind of a conversion toward target.
func conversionKind(target *crs.CRS) Kind {
	if target != nil && target.Kind() == crs.KindProjected {
		return KindProjection
	}

	return KindConversion
}

// SingleOperation is an operation defined by one method and its parameters.
type SingleOperation struct {
	props   Properties
	kind    Kind
	method  *Method
	params  *parameter.ValueGroup
	source  *crs.CRS
	target  *crs.CRS
	mt      transform.MathTransform
	forward *SingleOperation // set on operations built by Inverse

	inverseOnce sync.Once
	inverse     *SingleOperation
	inverseErr  error
}

var _ CoordinateOperation = (*SingleOperation)(nil)

// NewConversion returns a conversion from source to target computed by mt.
// params may be nil and set later once with SetParameterValues.
func NewConversion(props Properties, source, target *crs.CRS, method *Method, params *parameter.ValueGroup,
	mt transform.MathTransform) (*SingleOperation, error) {
	op, err := newSingle(props, conversionKind(target), source, target, method, params, mt)
	if err != nil {
		return nil, errors.Wrap(err, "NewConversion")
	}

	return op, nil
}

// NewTransformation returns a datum-changing operation computed by mt.
func NewTransformation(props Properties, source, target *crs.CRS, method *Method, params *parameter.ValueGroup,
	mt transform.MathTransform) (*SingleOperation, error) {
	op, err := newSingle(props, KindTransformation, source, target, method, params, mt)
	if err != nil {
		return nil, errors.Wrap(err, "NewTransformation")
	}

	return op, nil
}

func newSingle(props Properties, kind Kind, source, target *crs.CRS, method *Method, params *parameter.ValueGroup,
	mt transform.MathTransform) (*SingleOperation, error) {
	if source == nil || target == nil || mt == nil || method == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s %q: nil CRS, method or transform", kind, props.Name)
	}
	interp := 0
	if props.Interpolation != nil {
		interp = props.Interpolation.Dimension()
	}
	if mt.SourceDimensions() != source.Dimension()+interp || mt.TargetDimensions() != target.Dimension() {
		return nil, errors.Wrapf(ErrInvalidGeodeticParameter, "%s %q: %d→%d transform between %d-D and %d-D CRS",
			kind, props.Name, mt.SourceDimensions(), mt.TargetDimensions(), source.Dimension()+interp, target.Dimension())
	}
	op := &SingleOperation{props: props, kind: kind, method: method, source: source, target: target, mt: mt}
	if params != nil {
		op.params = parameter.Unmodifiable(params, nil)
		op.method = CompleteMethod(method, params)
	}

	return op, nil
}

// NewDefiningConversion returns a conversion without CRS nor transform,
// to be completed by Specialize.
func NewDefiningConversion(props Properties, method *Method, params *parameter.ValueGroup) (*SingleOperation, error) {
	if method == nil || params == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "NewDefiningConversion %q: nil method or parameters", props.Name)
	}

	return &SingleOperation{
		props:  props,
		kind:   KindConversion,
		method: CompleteMethod(method, params),
		params: parameter.Unmodifiable(params, nil),
	}, nil
}

// Name returns the operation name.
func (op *SingleOperation) Name() string { return op.props.Name }

// Kind returns the conversion / projection / transformation tag.
func (op *SingleOperation) Kind() Kind { return op.kind }

// Method returns the operation method.
func (op *SingleOperation) Method() *Method { return op.method }

// ParameterValues returns the frozen parameter values, or nil.
func (op *SingleOperation) ParameterValues() *parameter.ValueGroup { return op.params }

func (op *SingleOperation) SourceCRS() *crs.CRS                { return op.source }
func (op *SingleOperation) TargetCRS() *crs.CRS                { return op.target }
func (op *SingleOperation) InterpolationCRS() *crs.CRS         { return op.props.Interpolation }
func (op *SingleOperation) Transform() transform.MathTransform { return op.mt }
func (op *SingleOperation) Accuracy() float64                  { return op.props.Accuracy }

// IsDefining reports whether op still lacks its CRS and transform.
func (op *SingleOperation) IsDefining() bool { return op.mt == nil }

// SetParameterValues assigns the parameter values once. Values whose
// descriptor name or alias is flagged in contextual are hidden, unless the
// operation method declares that parameter itself. The method and the
// descriptor group of definition are kept as given.
func (op *SingleOperation) SetParameterValues(definition *parameter.ValueGroup, contextual map[string]bool) error {
	if definition == nil {
		return errors.Wrap(ErrInvalidArgument, "SetParameterValues: nil definition")
	}
	if op.params != nil {
		return errors.Wrapf(ErrPropertyAlreadySet, "parameters of %q", op.props.Name)
	}
	var declared *parameter.DescriptorGroup
	if op.method != nil {
		declared = op.method.Parameters
	}
	op.params = parameter.Unmodifiable(definition, func(d *parameter.Descriptor) bool {
		return isContextual(d, contextual) && !declared.Declares(d)
	})

	return nil
}

func isContextual(d *parameter.Descriptor, contextual map[string]bool) bool {
	if len(contextual) == 0 {
		return false
	}
	for name, flagged := range contextual {
		if flagged && d.Matches(name) {
			return true
		}
	}

	return false
}

// Equal compares op with other under mode. Strict and ByContract compare
// method and parameters. Looser modes treat the method as metadata and
// compare the transforms and CRS instead.
func (op *SingleOperation) Equal(other CoordinateOperation, mode crs.ComparisonMode) bool {
	return op.equal(other, mode, DefaultTolerance)
}

func (op *SingleOperation) equal(other CoordinateOperation, mode crs.ComparisonMode, tol float64) bool {
	o, ok := other.(*SingleOperation)
	if !ok || o == nil {
		return false
	}
	if op == o {
		return true
	}
	if op.kind != o.kind {
		return false
	}
	if mode == crs.Strict && (op.props.Name != o.props.Name || op.props.Accuracy != o.props.Accuracy) {
		return false
	}
	if !sameCRS(op.source, o.source, mode) || !sameCRS(op.target, o.target, mode) ||
		!sameCRS(op.props.Interpolation, o.props.Interpolation, mode) {
		return false
	}
	if mode <= crs.ByContract {
		if !op.method.SameAs(o.method) {
			return false
		}
		if (op.params == nil) != (o.params == nil) {
			return false
		}

		return op.params == nil || op.params.Equal(o.params, 0)
	}
	if op.mt == nil || o.mt == nil {
		return op.mt == nil && o.mt == nil && op.params.Equal(o.params, tol)
	}

	return sameTransform(op.mt, o.mt, mode, tol)
}

// Inverse returns the operation from target to source. The result is cached
// and the inverse of an inverse is op itself.
func (op *SingleOperation) Inverse() (CoordinateOperation, error) {
	inv, err := op.inverseOperation()
	if err != nil {
		return nil, err
	}

	return inv, nil
}

func (op *SingleOperation) inverseOperation() (*SingleOperation, error) {
	if op.forward != nil {
		return op.forward, nil
	}
	op.inverseOnce.Do(func() {
		if op.mt == nil {
			op.inverseErr = errors.Wrapf(ErrInvalidArgument, "inverse of defining conversion %q", op.props.Name)
			return
		}
		if op.props.Interpolation != nil {
			op.inverseErr = errors.Wrapf(transform.ErrNoninvertible, "%q uses an interpolation CRS", op.props.Name)
			return
		}
		mt, err := op.mt.Inverse()
		if err != nil {
			op.inverseErr = errors.Wrapf(err, "inverse of %q", op.props.Name)
			return
		}
		props := op.props
		props.Name = "Inverse of " + op.props.Name
		op.inverse = &SingleOperation{
			props:   props,
			kind:    inverseKind(op.kind, op.source),
			method:  op.method,
			params:  op.params,
			source:  op.target,
			target:  op.source,
			mt:      mt,
			forward: op,
		}
	})

	return op.inverse, op.inverseErr
}

func inverseKind(k Kind, newTarget *crs.CRS) Kind {
	if k == KindTransformation {
		return k
	}

	return conversionKind(newTarget)
}

func (op *SingleOperation) String() string {
	src, tgt := "?", "?"
	if op.source != nil {
		src = op.source.Name()
	}
	if op.target != nil {
		tgt = op.target.Name()
	}

	return fmt.Sprintf("%s[%q, %s → %s, method=%s]", op.kind, op.props.Name, src, tgt, op.method)
}
