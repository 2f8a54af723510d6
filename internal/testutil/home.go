// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir points the user home and config directories at dir for the
// rest of the test. Tests calling it cannot run in parallel.
func SetHomeDir(t *testing.T, dir string) {
	t.Helper()
	switch runtime.GOOS {
	case "windows":
		t.Setenv("USERPROFILE", dir)
		t.Setenv("APPDATA", dir)
	default:
		t.Setenv("HOME", dir)
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
}
