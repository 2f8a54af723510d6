// SPDX-License-Identifier: MPL-2.0

// Package types holds the small value types shared by every genlayout package:
// filesystem paths, project and source-set names, and process exit codes.
// Each type validates itself and reports failures through an error struct that
// unwraps to a package-level sentinel.
package types
