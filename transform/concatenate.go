// SPDX-License-Identifier: MIT

package transform

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/matrix"
)

// concatenated applies first then second.
type concatenated struct {
	first, second MathTransform
}

var (
	_ MathTransform  = (*concatenated)(nil)
	_ Differentiable = (*concatenated)(nil)
	_ Equaler        = (*concatenated)(nil)
)

// Concatenate returns the transform applying first then second.
//
// Implementation:
//   - Stage 1: check first.TargetDimensions() == second.SourceDimensions().
//   - Stage 2: drop identity operands.
//   - Stage 3: multiply matrices when both are linear.
//   - Stage 4: otherwise keep a two-step chain.
func Concatenate(first, second MathTransform) (MathTransform, error) {
	if first == nil || second == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "Concatenate: nil transform")
	}
	if first.TargetDimensions() != second.SourceDimensions() {
		return nil, errors.Wrapf(ErrMismatchedDimension, "Concatenate: %d-D output into %d-D input",
			first.TargetDimensions(), second.SourceDimensions())
	}
	if first.IsIdentity() {
		return second, nil
	}
	if second.IsIdentity() {
		return first, nil
	}
	l1, ok1 := first.(LinearTransform)
	l2, ok2 := second.(LinearTransform)
	if ok1 && ok2 {
		p, err := matrix.Mul(l2.Matrix(), l1.Matrix())
		if err != nil {
			return nil, errors.Wrap(err, "Concatenate")
		}

		return NewLinear(p)
	}

	return &concatenated{first: first, second: second}, nil
}

// ConcatenateAll folds Concatenate over steps, left to right.
func ConcatenateAll(steps ...MathTransform) (MathTransform, error) {
	if len(steps) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "ConcatenateAll: no step")
	}
	out := steps[0]
	for _, s := range steps[1:] {
		var err error
		if out, err = Concatenate(out, s); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Steps returns the flattened list of steps of t, or t itself.
func Steps(t MathTransform) []MathTransform {
	if c, ok := t.(*concatenated); ok {
		return append(Steps(c.first), Steps(c.second)...)
	}

	return []MathTransform{t}
}

func (c *concatenated) SourceDimensions() int { return c.first.SourceDimensions() }
func (c *concatenated) TargetDimensions() int { return c.second.TargetDimensions() }
func (c *concatenated) IsIdentity() bool      { return false }

// Transform passes every point through both steps using one intermediate buffer.
func (c *concatenated) Transform(src, dst []float64, numPts int) error {
	mid := c.first.TargetDimensions()
	if err := checkBuffers(src, dst, numPts, c.SourceDimensions(), c.TargetDimensions()); err != nil {
		return errors.Wrap(err, "Concatenate.Transform")
	}
	buf := make([]float64, numPts*mid)
	if err := c.first.Transform(src, buf, numPts); err != nil {
		return err
	}

	return c.second.Transform(buf, dst, numPts)
}

// Derivative applies the chain rule.
func (c *concatenated) Derivative(point []float64) (*matrix.Dense, error) {
	d1, err := Derivative(c.first, point)
	if err != nil {
		return nil, err
	}
	mid := make([]float64, c.first.TargetDimensions())
	if err = c.first.Transform(point, mid, 1); err != nil {
		return nil, err
	}
	d2, err := Derivative(c.second, mid)
	if err != nil {
		return nil, err
	}

	return matrix.Mul(d2, d1)
}

// Inverse returns second⁻¹ then first⁻¹.
func (c *concatenated) Inverse() (MathTransform, error) {
	i2, err := c.second.Inverse()
	if err != nil {
		return nil, err
	}
	i1, err := c.first.Inverse()
	if err != nil {
		return nil, err
	}

	return Concatenate(i2, i1)
}

// Equal compares step by step.
func (c *concatenated) Equal(other MathTransform, tol float64) bool {
	a, b := Steps(c), Steps(other)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i], tol) {
			return false
		}
	}

	return true
}

func (c *concatenated) String() string {
	var sb strings.Builder
	sb.WriteString("Concatenated[")
	for i, s := range Steps(c) {
		if i > 0 {
			sb.WriteString(" → ")
		}
		sb.WriteString(describe(s))
	}
	sb.WriteString("]")

	return sb.String()
}

func describe(t MathTransform) string {
	switch v := t.(type) {
	case *Linear:
		return "Affine"
	case *Func:
		return v.name
	case interface{ String() string }:
		return v.String()
	}

	return "MathTransform"
}
