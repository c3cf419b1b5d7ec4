// SPDX-License-Identifier: MIT

// Package crs models the coordinate reference systems that coordinate
// operations connect: units, axes, coordinate systems, ellipsoids, datums
// and datum ensembles, and the CRS itself.
//
// A CRS carries a Kind resolved once at construction (Geographic,
// Geocentric, Projected, Vertical, Temporal, Engineering, Derived or
// Compound), so callers switch on Kind instead of testing concrete types.
// Compound CRS keep their single components flattened.
//
// Values are immutable after construction and safe for concurrent use.
package crs
