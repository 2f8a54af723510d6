// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the genlayout command tree. Handlers resolve the
// workspace and configuration through an App and delegate the work to the
// pipeline.
package cmd
