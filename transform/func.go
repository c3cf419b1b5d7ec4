// SPDX-License-Identifier: MIT

package transform

import (
	"math"

	"github.com/cockroachdb/errors"
)

// PointFunc converts one point: src holds the source ordinates, dst receives
// the target ordinates.
type PointFunc func(src, dst []float64) error

// Func is a transform backed by point functions, for kernels whose formulas
// live outside this module.
type Func struct {
	name     string
	key      []float64
	src, tgt int
	forward  PointFunc
	reverse  PointFunc
	inverse  *Func
}

var (
	_ MathTransform = (*Func)(nil)
	_ Equaler       = (*Func)(nil)
)

// NewFunc returns a transform named name computing forward. reverse may be
// nil when no inverse exists. key holds the numeric parameters that identify
// the function for Equal.
func NewFunc(name string, srcDim, tgtDim int, key []float64, forward, reverse PointFunc) *Func {
	if forward == nil || srcDim <= 0 || tgtDim <= 0 {
		panic("transform: NewFunc needs positive dimensions and a forward function")
	}
	k := append([]float64(nil), key...)
	f := &Func{name: name, key: k, src: srcDim, tgt: tgtDim, forward: forward, reverse: reverse}
	if reverse != nil {
		f.inverse = &Func{name: "Inverse " + name, key: k, src: tgtDim, tgt: srcDim, forward: reverse, reverse: forward, inverse: f}
	}

	return f
}

// Name returns the name given at construction.
func (f *Func) Name() string          { return f.name }
func (f *Func) SourceDimensions() int { return f.src }
func (f *Func) TargetDimensions() int { return f.tgt }
func (f *Func) IsIdentity() bool      { return false }

// Transform calls the point function for every point. Non-finite results are
// propagated as-is; errors are wrapped with ErrTransform.
func (f *Func) Transform(src, dst []float64, numPts int) error {
	if err := checkBuffers(src, dst, numPts, f.src, f.tgt); err != nil {
		return errors.Wrap(err, f.name)
	}
	src = safeSource(src, dst, numPts, f.src, f.tgt)
	in := make([]float64, f.src)
	out := make([]float64, f.tgt)
	for k := 0; k < numPts; k++ {
		copy(in, src[k*f.src:(k+1)*f.src])
		if err := f.forward(in, out); err != nil {
			return errors.Mark(errors.Wrapf(err, "%s: point %d", f.name, k), ErrTransform)
		}
		copy(dst[k*f.tgt:(k+1)*f.tgt], out)
	}

	return nil
}

// Inverse returns the function built from reverse.
func (f *Func) Inverse() (MathTransform, error) {
	if f.inverse == nil {
		return nil, errors.Wrapf(ErrNoninvertible, "%s has no inverse", f.name)
	}

	return f.inverse, nil
}

// Equal compares name, dimensions and key parameters.
func (f *Func) Equal(other MathTransform, tol float64) bool {
	o, ok := other.(*Func)
	if !ok || o.name != f.name || o.src != f.src || o.tgt != f.tgt || len(o.key) != len(f.key) {
		return false
	}
	for i, v := range f.key {
		if !(math.Abs(v-o.key[i]) <= tol) && !(v == o.key[i]) {
			return false
		}
	}

	return true
}

func (f *Func) String() string { return f.name }
