// SPDX-License-Identifier: MPL-2.0

// Package subproject models a generated sub-project as a base configuration
// with optional capability facets attached.
//
// A Config always carries the base directory cells (source, generated
// source, generated resources, META-INF and icons). Capabilities add their
// own cells through facets: Bundle adds the manifest and descriptor paths,
// Runtime adds the model directory and brings Bundle along, and Web adds the
// assets directory. Callers ask whether a capability is present with Has and
// obtain its facet with As or one of the typed helpers.
package subproject
