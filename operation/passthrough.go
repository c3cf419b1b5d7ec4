// SPDX-License-Identifier: MIT

package operation

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/transform"
)

// PassThroughOperation applies an operation to some coordinates of a larger
// tuple and copies the other coordinates unchanged.
type PassThroughOperation struct {
	props   Properties
	source  *crs.CRS
	target  *crs.CRS
	op      CoordinateOperation
	indices []int
	mt      transform.MathTransform
	fwd     *PassThroughOperation

	inverseOnce sync.Once
	inverse     *PassThroughOperation
	inverseErr  error
}

var _ CoordinateOperation = (*PassThroughOperation)(nil)

// NewPassThrough wraps op so that it acts on the coordinates following the
// first firstAffected ones, leaving numTrailing coordinates after them.
func NewPassThrough(props Properties, source, target *crs.CRS, op CoordinateOperation,
	firstAffected, numTrailing int) (*PassThroughOperation, error) {
	if op == nil || op.Transform() == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "NewPassThrough %q: operation without transform", props.Name)
	}
	mt, err := transform.PassThrough(firstAffected, op.Transform(), numTrailing)
	if err != nil {
		return nil, errors.Wrapf(err, "NewPassThrough %q", props.Name)
	}
	indices := make([]int, op.Transform().SourceDimensions())
	for i := range indices {
		indices[i] = firstAffected + i
	}

	return newPassThrough(props, source, target, op, indices, mt)
}

// NewPassThroughIndices wraps op so that it acts on the given sorted source
// coordinates. Scattered indices require op to keep its dimension.
func NewPassThroughIndices(props Properties, source, target *crs.CRS, op CoordinateOperation,
	indices []int) (*PassThroughOperation, error) {
	if op == nil || op.Transform() == nil || source == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "NewPassThroughIndices %q: missing operation or source", props.Name)
	}
	mt, err := transform.PassThroughIndices(source.Dimension(), indices, op.Transform())
	if err != nil {
		return nil, errors.Wrapf(err, "NewPassThroughIndices %q", props.Name)
	}

	return newPassThrough(props, source, target, op, append([]int(nil), indices...), mt)
}

func newPassThrough(props Properties, source, target *crs.CRS, op CoordinateOperation, indices []int,
	mt transform.MathTransform) (*PassThroughOperation, error) {
	if source == nil || target == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "pass-through %q: nil CRS", props.Name)
	}
	if mt.SourceDimensions() != source.Dimension() || mt.TargetDimensions() != target.Dimension() {
		return nil, errors.Wrapf(ErrInvalidGeodeticParameter, "pass-through %q: %d→%d transform between %d-D and %d-D CRS",
			props.Name, mt.SourceDimensions(), mt.TargetDimensions(), source.Dimension(), target.Dimension())
	}

	return &PassThroughOperation{props: props, source: source, target: target, op: op, indices: indices, mt: mt}, nil
}

// Name returns the operation name.
func (p *PassThroughOperation) Name() string { return p.props.Name }

func (p *PassThroughOperation) SourceCRS() *crs.CRS                { return p.source }
func (p *PassThroughOperation) TargetCRS() *crs.CRS                { return p.target }
func (p *PassThroughOperation) Transform() transform.MathTransform { return p.mt }

// Accuracy returns the accuracy of the wrapped operation unless one was given.
func (p *PassThroughOperation) Accuracy() float64 {
	if p.props.Accuracy > 0 {
		return p.props.Accuracy
	}

	return p.op.Accuracy()
}

// Operation returns the wrapped operation.
func (p *PassThroughOperation) Operation() CoordinateOperation { return p.op }

// ModifiedCoordinates returns a copy of the source indices given to the
// wrapped operation.
func (p *PassThroughOperation) ModifiedCoordinates() []int {
	return append([]int(nil), p.indices...)
}

// Inverse wraps the inverse of the wrapped operation. Its modified
// coordinates are the target positions of the forward operation.
func (p *PassThroughOperation) Inverse() (CoordinateOperation, error) {
	if p.fwd != nil {
		return p.fwd, nil
	}
	p.inverseOnce.Do(func() {
		inner, err := p.op.Inverse()
		if err != nil {
			p.inverseErr = errors.Wrapf(err, "inverse of %q", p.props.Name)
			return
		}
		mt, err := p.mt.Inverse()
		if err != nil {
			p.inverseErr = errors.Wrapf(err, "inverse of %q", p.props.Name)
			return
		}
		first := p.indices[0]
		indices := make([]int, inner.Transform().SourceDimensions())
		if contiguous(p.indices) {
			for i := range indices {
				indices[i] = first + i
			}
		} else {
			copy(indices, p.indices)
		}
		props := p.props
		props.Name = "Inverse of " + p.props.Name
		p.inverse = &PassThroughOperation{props: props, source: p.target, target: p.source, op: inner,
			indices: indices, mt: mt, fwd: p}
	})
	if p.inverseErr != nil {
		return nil, p.inverseErr
	}

	return p.inverse, nil
}

func contiguous(indices []int) bool {
	return len(indices) == 0 || indices[len(indices)-1]-indices[0] == len(indices)-1
}

// Equal compares CRS, modified coordinates and wrapped operations.
func (p *PassThroughOperation) Equal(other CoordinateOperation, mode crs.ComparisonMode) bool {
	return p.equal(other, mode, DefaultTolerance)
}

func (p *PassThroughOperation) equal(other CoordinateOperation, mode crs.ComparisonMode, tol float64) bool {
	o, ok := other.(*PassThroughOperation)
	if !ok || o == nil {
		return false
	}
	if p == o {
		return true
	}
	if mode == crs.Strict && p.props.Name != o.props.Name {
		return false
	}
	if !sameCRS(p.source, o.source, mode) || !sameCRS(p.target, o.target, mode) {
		return false
	}
	if len(p.indices) != len(o.indices) {
		return false
	}
	for i, v := range p.indices {
		if o.indices[i] != v {
			return false
		}
	}

	return equalWithin(p.op, o.op, mode, tol)
}

func (p *PassThroughOperation) String() string {
	return fmt.Sprintf("PassThrough[%q, %v, %s]", p.props.Name, p.indices, p.op.Name())
}
