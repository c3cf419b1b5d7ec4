// SPDX-License-Identifier: MIT

// Package builder fits transforms from control points.
//
// LinearTransformBuilder computes the least-squares affine transform from
// gridded or scattered source points to target points, one target
// dimension at a time, and reports a correlation coefficient per target
// dimension. Candidate "linearizers" (non-linear projections applied to the
// target coordinates before fitting) may be registered; the candidate giving
// the best worst-dimension correlation is kept.
//
// LocalizationGridBuilder turns a 2-D grid of (cell → coordinate)
// correspondences into a single transform: the affine fit when it is good
// enough, otherwise the affine fit corrected by a residual grid interpolated
// bilinearly, optionally followed by the inverse of the selected linearizer.
//
// Builders are single-use and not safe for concurrent use: the first
// successful Create freezes them and every later mutation returns
// ErrUnmodifiable. Created transforms are immutable.
package builder
