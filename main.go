// SPDX-License-Identifier: MPL-2.0

// Command genlayout lays out, reclassifies and packages generated
// sub-projects.
package main

import cmd "github.com/genlayout/genlayout/cmd/genlayout"

func main() {
	cmd.Execute()
}
