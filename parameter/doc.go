// SPDX-License-Identifier: MIT

// Package parameter describes the numeric parameters of operation methods.
//
// A DescriptorGroup lists the expected parameters (name, aliases, unit,
// default). A ValueGroup holds values matching a descriptor group and stays
// mutable until frozen through Unmodifiable, which may also hide the
// parameters selected by an exclusion predicate (contextual parameters such
// as ellipsoid axis lengths, inferred from the CRS instead of stated).
package parameter
