// SPDX-License-Identifier: MIT

// Package transform defines MathTransform, the executable part of a
// coordinate operation, and the handful of implementations the rest of the
// module composes:
//
//   - Linear: an affine matrix, (M+1)×(N+1).
//   - Concatenate / ConcatenateAll: chains, collapsing adjacent linear steps
//     into one matrix product.
//   - PassThrough / PassThroughIndices: apply a sub-transform to a contiguous
//     or scattered subset of dimensions, copying the others unchanged.
//   - Func: a transform backed by point functions, used by map-projection
//     providers whose formulas are opaque.
//
// Coordinates are interleaved: point k occupies src[k*dim : (k+1)*dim].
// dst may alias src.
//
// All values returned by this package are immutable and safe for concurrent
// use once constructed.
package transform
