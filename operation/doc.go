// SPDX-License-Identifier: MIT

// Package operation builds coordinate operations: single conversions and
// transformations bound to an operation method, parameter values and
// source/target CRS, their concatenation into chains, pass-through
// operations acting on a subset of coordinates, and the decomposition of
// operations between compound CRS.
//
// A defining conversion carries a method and parameters but no CRS; it is
// turned into a usable operation by Specialize once the CRS are known.
// Specialization never changes datum: a datum mismatch is reported with
// ErrMismatchedDatum.
//
// Transforms are obtained from a MathTransformFactory, a registry of
// providers (map projections, datum shifts) addressed by method name.
//
// Operations are immutable once built and safe for concurrent reads.
// Drafts are the single-use builders used when operations are decoded from
// external documents.
package operation
