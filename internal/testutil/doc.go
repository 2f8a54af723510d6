// SPDX-License-Identifier: MPL-2.0

// Package testutil holds filesystem and environment helpers shared by the
// command and pipeline tests. Helpers fail the test instead of returning
// errors.
package testutil
