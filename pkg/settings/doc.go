// SPDX-License-Identifier: MPL-2.0

// Package settings provides an insertion-ordered string map and a codec for
// the classic key=value properties format.
//
// Store writes the same bytes for the same entries on every run: the date
// comment the format normally carries is suppressed by DateIgnoringWriter,
// so settings files such as build.properties and IDE preference files do
// not change between builds.
package settings
