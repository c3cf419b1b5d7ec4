// SPDX-License-Identifier: MIT

package operation

import (
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/transform"
)

// connectModes are tried in order when checking that a step starts where
// the previous one ended.
var connectModes = [...]crs.ComparisonMode{crs.ByContract, crs.IgnoreMetadata, crs.Compatibility, crs.Approximate}

// ConcatenatedOperation is an ordered chain of operations.
type ConcatenatedOperation struct {
	props  Properties
	source *crs.CRS
	target *crs.CRS
	steps  []CoordinateOperation
	mt     transform.MathTransform
	fwd    *ConcatenatedOperation

	inverseOnce sync.Once
	inverse     *ConcatenatedOperation
	inverseErr  error
}

var _ CoordinateOperation = (*ConcatenatedOperation)(nil)

// chain accumulates the flattened steps of a concatenation.
type chain struct {
	source     *crs.CRS
	previous   *crs.CRS
	steps      []CoordinateOperation
	mt         transform.MathTransform
	accuracy   float64
	candidates int
}

// NewConcatenated chains operations, inverting each step whose target CRS,
// rather than its source CRS, matches the target of the previous step.
//
// Implementation:
//   - Stage 1: at least two operations are required.
//   - Stage 2: each step is connected to the previous target under
//     ByContract, then IgnoreMetadata, Compatibility and Approximate
//     comparison; a step matched by its target is inverted, reusing the
//     forward operation when the step is itself an inverse.
//   - Stage 3: nested concatenations are flattened: the nested chain is
//     connected once by its own source and target CRS, then its transform
//     and steps are taken as they are. Identity steps are dropped from Steps
//     but their transforms are still concatenated.
//   - Stage 4: the accuracy is copied from the only transformation or
//     nested concatenation declaring one; with several it stays unknown.
//
// Errors:
//   - ErrInvalidArgument with fewer than two operations or a nil one.
//   - ErrInvalidGeodeticParameter naming the step that does not connect.
func NewConcatenated(props Properties, ops ...CoordinateOperation) (*ConcatenatedOperation, error) {
	if len(ops) < 2 {
		return nil, errors.Wrapf(ErrInvalidArgument, "NewConcatenated %q: %d operation(s), need at least 2", props.Name, len(ops))
	}
	c := &chain{}
	if err := c.append(ops); err != nil {
		return nil, errors.Wrapf(err, "NewConcatenated %q", props.Name)
	}
	if props.Accuracy == 0 && c.candidates == 1 {
		props.Accuracy = c.accuracy
	}

	return &ConcatenatedOperation{props: props, source: c.source, target: c.previous, steps: c.steps, mt: c.mt}, nil
}

func (c *chain) append(ops []CoordinateOperation) error {
	for i, op := range ops {
		if op == nil {
			return errors.Wrapf(ErrInvalidArgument, "step %d is nil", i)
		}
		src, tgt := op.SourceCRS(), op.TargetCRS()
		if src == nil || tgt == nil || op.Transform() == nil {
			return errors.Wrapf(ErrInvalidGeodeticParameter, "step %d (%q) has no CRS or transform", i, op.Name())
		}
		if c.previous == nil {
			c.source = src
			c.previous = src
		}
		invert, mode, ok := connect(c.previous, src, tgt)
		if !ok {
			return errors.Wrapf(ErrInvalidGeodeticParameter, "step %d (%q) goes from %q to %q, not from %q",
				i, op.Name(), src.Name(), tgt.Name(), c.previous.Name())
		}
		if invert {
			inv, err := op.Inverse()
			if err != nil {
				return errors.WithSecondaryError(
					errors.Wrapf(ErrInvalidGeodeticParameter, "step %d (%q) must be inverted", i, op.Name()), err)
			}
			op = inv
		}
		if mode >= crs.Compatibility {
			if err := c.swapAxes(op.SourceCRS()); err != nil {
				return errors.Wrapf(err, "step %d (%q)", i, op.Name())
			}
		}
		if op.Accuracy() > 0 {
			switch x := op.(type) {
			case *ConcatenatedOperation:
				c.candidates++
				c.accuracy = x.Accuracy()
			case *SingleOperation:
				if x.Kind() == KindTransformation {
					c.candidates++
					c.accuracy = x.Accuracy()
				}
			}
		}
		if nested, ok := op.(*ConcatenatedOperation); ok {
			if err := c.appendNested(nested); err != nil {
				return errors.Wrapf(err, "step %d (%q)", i, op.Name())
			}
			continue
		}
		if err := c.concatenate(op.Transform()); err != nil {
			return errors.Wrapf(err, "step %d (%q)", i, op.Name())
		}
		c.previous = op.TargetCRS()
		if !isIdentity(op) {
			c.steps = append(c.steps, op)
		}
	}

	return nil
}

// appendNested flattens nested, already connected by its source CRS. Its
// steps are not connected again: identity steps it dropped may have changed
// the datum between them.
func (c *chain) appendNested(nested *ConcatenatedOperation) error {
	if err := c.concatenate(nested.mt); err != nil {
		return err
	}
	c.steps = append(c.steps, nested.steps...)
	c.previous = nested.target

	return nil
}

// connect finds how an operation from src to tgt follows previous.
func connect(previous, src, tgt *crs.CRS) (invert bool, mode crs.ComparisonMode, ok bool) {
	for _, m := range connectModes {
		if crs.Equal(previous, src, m) {
			return false, m, true
		}
		if crs.Equal(previous, tgt, m) {
			return true, m, true
		}
	}

	return false, 0, false
}

// swapAxes inserts the axis reordering from the previous target to next
// when the two only match after axis swaps.
func (c *chain) swapAxes(next *crs.CRS) error {
	if c.previous.CoordinateSystem().Equal(next.CoordinateSystem(), crs.IgnoreMetadata) {
		return nil
	}
	m, err := crs.SwapAndScaleAxes(c.previous.CoordinateSystem(), next.CoordinateSystem())
	if err != nil {
		return errors.WithSecondaryError(errors.Wrap(ErrInvalidGeodeticParameter, "axis swap"), err)
	}
	l, err := transform.NewLinear(m)
	if err != nil {
		return err
	}

	return c.concatenate(l)
}

func (c *chain) concatenate(mt transform.MathTransform) error {
	if c.mt == nil {
		c.mt = mt
		return nil
	}
	var err error
	c.mt, err = transform.Concatenate(c.mt, mt)

	return err
}

// Name returns the operation name.
func (c *ConcatenatedOperation) Name() string { return c.props.Name }

func (c *ConcatenatedOperation) SourceCRS() *crs.CRS                { return c.source }
func (c *ConcatenatedOperation) TargetCRS() *crs.CRS                { return c.target }
func (c *ConcatenatedOperation) Transform() transform.MathTransform { return c.mt }
func (c *ConcatenatedOperation) Accuracy() float64                  { return c.props.Accuracy }

// Steps returns a copy of the non-identity steps, in order.
func (c *ConcatenatedOperation) Steps() []CoordinateOperation {
	return append([]CoordinateOperation(nil), c.steps...)
}

// Inverse returns the chain of the inverted steps in reverse order.
func (c *ConcatenatedOperation) Inverse() (CoordinateOperation, error) {
	if c.fwd != nil {
		return c.fwd, nil
	}
	c.inverseOnce.Do(func() {
		mt, err := c.mt.Inverse()
		if err != nil {
			c.inverseErr = errors.Wrapf(err, "inverse of %q", c.props.Name)
			return
		}
		steps := make([]CoordinateOperation, len(c.steps))
		for i, s := range c.steps {
			inv, err := s.Inverse()
			if err != nil {
				c.inverseErr = errors.Wrapf(err, "inverse of %q", c.props.Name)
				return
			}
			steps[len(steps)-1-i] = inv
		}
		props := c.props
		props.Name = "Inverse of " + c.props.Name
		c.inverse = &ConcatenatedOperation{props: props, source: c.target, target: c.source, steps: steps, mt: mt, fwd: c}
	})
	if c.inverseErr != nil {
		return nil, c.inverseErr
	}

	return c.inverse, nil
}

// Equal compares step by step up to ByContract, and compares CRS and
// transforms under looser modes.
func (c *ConcatenatedOperation) Equal(other CoordinateOperation, mode crs.ComparisonMode) bool {
	return c.equal(other, mode, DefaultTolerance)
}

func (c *ConcatenatedOperation) equal(other CoordinateOperation, mode crs.ComparisonMode, tol float64) bool {
	o, ok := other.(*ConcatenatedOperation)
	if !ok || o == nil {
		return false
	}
	if c == o {
		return true
	}
	if mode == crs.Strict && (c.props.Name != o.props.Name || c.props.Accuracy != o.props.Accuracy) {
		return false
	}
	if !sameCRS(c.source, o.source, mode) || !sameCRS(c.target, o.target, mode) {
		return false
	}
	if mode > crs.ByContract {
		return sameTransform(c.mt, o.mt, mode, tol)
	}
	if len(c.steps) != len(o.steps) {
		return false
	}
	for i, s := range c.steps {
		if !equalWithin(s, o.steps[i], mode, tol) {
			return false
		}
	}

	return true
}

func (c *ConcatenatedOperation) String() string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name()
	}

	return "Concatenated[" + c.props.Name + ": " + strings.Join(names, " → ") + "]"
}
