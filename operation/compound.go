// SPDX-License-Identifier: MIT

package operation

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/katalvlaran/georef/crs"
	"github.com/katalvlaran/georef/matrix"
	"github.com/katalvlaran/georef/transform"
)

// OperationFinder finds an operation between two single CRS.
type OperationFinder interface {
	// CreateOperation returns an error matching ErrOperationNotFound when
	// no operation exists, so that callers may try another pair.
	CreateOperation(source, target *crs.CRS) (CoordinateOperation, error)
}

// subOperationInfo is the operation chosen for one target component.
type subOperationInfo struct {
	op              CoordinateOperation // nil when constants are used
	constants       []float64
	sourceComponent *crs.CRS
	srcLower        int
	srcUpper        int
	target          *crs.CRS
	tgtLower        int
	tgtUpper        int
}

// preferredSources returns the source kinds able to serve a target
// component, most preferred first.
func preferredSources(target *crs.CRS) []func(*crs.CRS) bool {
	k := target.Kind()
	switch {
	case k.IsGeodetic():
		return []func(*crs.CRS) bool{func(c *crs.CRS) bool { return c.Kind().IsGeodetic() }}
	case k == crs.KindVertical:
		return []func(*crs.CRS) bool{
			func(c *crs.CRS) bool { return c.Kind() == crs.KindVertical },
			func(c *crs.CRS) bool { return c.Is3DGeographic() },
		}
	}

	return []func(*crs.CRS) bool{func(c *crs.CRS) bool { return c.Kind() == k }}
}

// CreateCompoundOperation returns the operation between two CRS whose
// components are linked one by one through finder.
//
// Implementation:
//   - Stage 1: for each target component in order, try the unused source
//     components of the preferred kinds; the first component for which
//     finder returns an operation is taken and never reconsidered.
//   - Stage 2: a target component without source uses the matching range
//     of constants when it holds no NaN.
//   - Stage 3: an axis selection step reorders the source coordinates in
//     the order the operations consume them.
//   - Stage 4: each operation is wrapped in a pass-through over the
//     coordinates of the other components.
//   - Stage 5: a final affine step places the results in target order and
//     writes the constants.
//
// Errors:
//   - ErrOperationNotFound when a target component can be neither linked
//     nor filled with constants.
func CreateCompoundOperation(finder OperationFinder, source, target *crs.CRS, constants []float64) (CoordinateOperation, error) {
	if finder == nil || source == nil || target == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "CreateCompoundOperation: nil argument")
	}
	infos, err := matchComponents(finder, source, target, constants)
	if err != nil {
		return nil, err
	}
	steps, err := compoundSteps(source, target, infos)
	if err != nil {
		return nil, err
	}
	name := source.Name() + " → " + target.Name()
	switch len(steps) {
	case 0:
		op, err := NewConversion(Properties{Name: name}, source, target, Affine, nil, transform.Identity(source.Dimension()))
		if err != nil {
			return nil, err
		}

		return op, nil
	case 1:
		return rebind(Properties{Name: name}, source, target, steps[0]), nil
	}
	op, err := NewConcatenated(Properties{Name: name}, steps...)
	if err != nil {
		return nil, err
	}

	return op, nil
}

func matchComponents(finder OperationFinder, source, target *crs.CRS, constants []float64) ([]subOperationInfo, error) {
	srcComps := source.Components()
	srcLower := make([]int, len(srcComps))
	for i, lo := 1, 0; i < len(srcComps); i++ {
		lo += srcComps[i-1].Dimension()
		srcLower[i] = lo
	}
	used := make([]bool, len(srcComps))
	var infos []subOperationInfo
	tgtLower := 0
	for _, tc := range target.Components() {
		info := subOperationInfo{target: tc, tgtLower: tgtLower, tgtUpper: tgtLower + tc.Dimension()}
		tgtLower = info.tgtUpper
		found := false
	search:
		for _, accept := range preferredSources(tc) {
			for j, sc := range srcComps {
				if used[j] || !accept(sc) {
					continue
				}
				op, err := finder.CreateOperation(sc, tc)
				if errors.Is(err, ErrOperationNotFound) {
					continue
				}
				if err != nil {
					return nil, errors.Wrapf(err, "component %q → %q", sc.Name(), tc.Name())
				}
				used[j] = true
				info.op = op
				info.sourceComponent = sc
				info.srcLower = srcLower[j]
				info.srcUpper = srcLower[j] + sc.Dimension()
				found = true

				break search
			}
		}
		if !found {
			c, ok := constantRange(constants, info.tgtLower, info.tgtUpper)
			if !ok {
				return nil, errors.Wrapf(ErrOperationNotFound, "no source component for %q", tc.Name())
			}
			info.constants = c
		}
		infos = append(infos, info)
	}

	return infos, nil
}

func constantRange(constants []float64, lo, hi int) ([]float64, bool) {
	if hi > len(constants) {
		return nil, false
	}
	for _, v := range constants[lo:hi] {
		if math.IsNaN(v) {
			return nil, false
		}
	}

	return constants[lo:hi], true
}

func compoundSteps(source, target *crs.CRS, infos []subOperationInfo) ([]CoordinateOperation, error) {
	var (
		selected   []int
		components []*crs.CRS
		ops        []subOperationInfo
	)
	for _, info := range infos {
		if info.op == nil {
			continue
		}
		for d := info.srcLower; d < info.srcUpper; d++ {
			selected = append(selected, d)
		}
		components = append(components, info.sourceComponent)
		ops = append(ops, info)
	}
	var steps []CoordinateOperation
	current := source
	if len(ops) > 0 && !isSequence(selected, source.Dimension()) {
		m, err := matrix.CreateDimensionSelect(source.Dimension(), selected)
		if err != nil {
			return nil, err
		}
		next, err := joinCRS(components)
		if err != nil {
			return nil, err
		}
		step, err := NewConversion(Properties{Name: "Axis changes"}, current, next, Affine, nil, transform.MustLinear(m))
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
		current = next
	}
	for k, info := range ops {
		if isIdentity(info.op) {
			continue
		}
		first, trailing := 0, 0
		for i, c := range components {
			switch {
			case i < k:
				first += c.Dimension()
			case i > k:
				trailing += c.Dimension()
			}
		}
		components[k] = info.op.TargetCRS()
		next, err := joinCRS(components)
		if err != nil {
			return nil, err
		}
		var step CoordinateOperation = info.op
		if first != 0 || trailing != 0 {
			if step, err = NewPassThrough(Properties{Name: info.op.Name()}, current, next, info.op, first, trailing); err != nil {
				return nil, err
			}
		}
		steps = append(steps, step)
		current = next
	}
	final, err := placeResults(current, target, infos)
	if err != nil {
		return nil, err
	}
	if final != nil {
		steps = append(steps, final)
	}

	return steps, nil
}

// rebind returns step, or a one-step chain from source to target when the
// step connects intermediate compounds of the same shape.
func rebind(props Properties, source, target *crs.CRS, step CoordinateOperation) CoordinateOperation {
	if step.SourceCRS() == source && step.TargetCRS() == target {
		return step
	}
	props.Accuracy = step.Accuracy()

	return &ConcatenatedOperation{props: props, source: source, target: target,
		steps: []CoordinateOperation{step}, mt: step.Transform()}
}

// isSequence reports whether dims is 0, 1, ... n-1.
func isSequence(dims []int, n int) bool {
	if len(dims) != n {
		return false
	}
	for i, d := range dims {
		if d != i {
			return false
		}
	}

	return true
}

// placeResults returns the affine step from the operation outputs, in
// operation order, to the target coordinates, or nil when it would be an
// identity.
func placeResults(current, target *crs.CRS, infos []subOperationInfo) (CoordinateOperation, error) {
	hasConstants := false
	for _, info := range infos {
		if info.op == nil {
			hasConstants = true
		}
	}
	srcDim := current.Dimension()
	m, err := matrix.NewDense(target.Dimension()+1, srcDim+1)
	if err != nil {
		return nil, err
	}
	col := 0
	for _, info := range infos {
		for d := info.tgtLower; d < info.tgtUpper; d++ {
			if info.op == nil {
				_ = m.Set(d, srcDim, info.constants[d-info.tgtLower])
				continue
			}
			_ = m.Set(d, col, 1)
			col++
		}
	}
	_ = m.Set(target.Dimension(), srcDim, 1)
	if matrix.IsIdentity(m, 0) {
		return nil, nil
	}
	name := "Axis changes"
	if hasConstants {
		name = "Constants"
	}

	op, err := NewConversion(Properties{Name: name}, current, target, Affine, nil, transform.MustLinear(m))
	if err != nil {
		return nil, err
	}

	return op, nil
}

// joinCRS returns the only component, or their compound.
func joinCRS(components []*crs.CRS) (*crs.CRS, error) {
	if len(components) == 1 {
		return components[0], nil
	}
	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name()
	}

	return crs.NewCompound(strings.Join(names, " + "), components...)
}

// AxisChangeFinder links single CRS of the same datum that differ only by
// axis order, direction, units or dropped axes, including the ellipsoidal
// height of a 3-D geographic CRS serving a vertical CRS.
type AxisChangeFinder struct{}

var _ OperationFinder = AxisChangeFinder{}

// CreateOperation implements OperationFinder.
func (AxisChangeFinder) CreateOperation(source, target *crs.CRS) (CoordinateOperation, error) {
	if source == nil || target == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "AxisChangeFinder: nil CRS")
	}
	if source.Kind() == crs.KindCompound || target.Kind() == crs.KindCompound {
		return nil, errors.Wrapf(ErrOperationNotFound, "%q → %q: compound CRS", source.Name(), target.Name())
	}
	if !source.Datum().EqualsIgnoreMetadata(target.Datum()) {
		return nil, errors.Wrapf(ErrOperationNotFound, "%q → %q: datum change", source.Name(), target.Name())
	}
	sameKind := source.Kind() == target.Kind()
	if sameKind && source.Kind().IsDerivedFromBase() && !crs.Equal(source.Base(), target.Base(), crs.IgnoreMetadata) {
		return nil, errors.Wrapf(ErrOperationNotFound, "%q → %q: different bases", source.Name(), target.Name())
	}
	if !sameKind && !(target.Kind() == crs.KindVertical && source.Is3DGeographic()) {
		return nil, errors.Wrapf(ErrOperationNotFound, "%q → %q: %s to %s", source.Name(), target.Name(), source.Kind(), target.Kind())
	}
	m, err := crs.SwapAndScaleAxes(source.CoordinateSystem(), target.CoordinateSystem())
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrOperationNotFound, "%q → %q", source.Name(), target.Name()), err)
	}

	op, err := NewConversion(Properties{Name: "Axis changes"}, source, target, Affine, nil, transform.MustLinear(m))
	if err != nil {
		return nil, err
	}

	return op, nil
}
