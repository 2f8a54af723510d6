// SPDX-License-Identifier: MPL-2.0

// Package artifact packages sub-project outputs into jars and merges
// generated manifests into a jar's manifest exactly once per build.
package artifact
