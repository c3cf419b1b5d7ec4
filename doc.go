// Package georef is your in-memory toolkit for georeferencing: fitting
// grid-to-CRS transforms from control points and chaining coordinate
// operations between reference systems.
//
// 🚀 What is georef?
//
//	A small, thread-safe library that brings together:
//		• Matrices: dense affine matrices, axis swaps and pass-through embedding
//		• Math transforms: linear, functional and concatenated transforms
//		• CRS model: geographic, projected, vertical, temporal and compound CRS
//		• Parameters: descriptors, value groups and alias matching
//		• Operations: conversions, transformations, chains and pass-throughs
//		• Providers: Transverse Mercator, Pseudo Mercator, geographic offsets
//		• Builders: least-squares grid fitting with linearizers and residuals
//
// ✨ Why choose georef?
//
//   - Beginner-friendly: minimal API, functional options, clear errors
//   - Predictable: sentinel errors, immutable operations, cached inverses
//   - Pluggable: register your own operation methods on a factory
//
// Under the hood, everything is organized under these subpackages:
//
//	matrix/     affine matrices and axis-order helpers
//	transform/  MathTransform implementations and concatenation
//	crs/        coordinate reference systems, datums and axes
//	parameter/  parameter descriptors and value groups
//	operation/  coordinate operations, drafts and compound decomposition
//	provider/   built-in operation methods
//	builder/    LinearTransformBuilder for gridded control points
//	config/     viper-backed settings and slog logger
//
// Quick ASCII example:
//
//	    (0,0)───(1,0)        (lon,lat)───(lon,lat)
//	      │       │    ──▶       │           │
//	    (0,1)───(1,1)        (lon,lat)───(lon,lat)
//
//	a grid of control points fitted to geographic coordinates.
//
//	go get github.com/katalvlaran/georef
package georef
