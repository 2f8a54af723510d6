// SPDX-License-Identifier: MPL-2.0

// Package layout derives the generated-file layout of a sub-project from its
// output root, source set and capabilities.
//
// For output root O and source set S the conventions are:
//
//	srcGen       = O/src-gen/S/java
//	resourcesGen = O/src-gen/S/resources
//	metaInf      = resourcesGen/META-INF
//	manifest     = metaInf/MANIFEST.MF      (bundle)
//	descriptor   = resourcesGen/plugin.xml  (bundle)
//	model        = resourcesGen/model       (runtime)
//	assets       = resourcesGen/assets      (web)
//
// Conventions only fill cells that hold nothing, and they read other cells
// lazily, so explicit values set before the first read always win.
package layout
