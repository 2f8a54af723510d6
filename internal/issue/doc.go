// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors for the CLI and a catalog of
// Markdown guidance pages for the failure categories users run into.
package issue
