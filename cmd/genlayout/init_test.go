// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"testing"

	"github.com/genlayout/genlayout/internal/testutil"
	"github.com/genlayout/genlayout/pkg/workspace"
)

func TestInit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	dir := filepath.Join(t.TempDir(), "repo")

	if _, _, err := h.run("init", dir); err != nil {
		t.Fatalf("init error = %v", err)
	}
	path := filepath.Join(dir, workspace.FileName)
	if _, err := workspace.Parse([]byte(testutil.ReadFile(t, path)), dir, workspace.FileName); err != nil {
		t.Errorf("written descriptor does not parse: %v", err)
	}

	if _, _, err := h.run("init", dir); err == nil {
		t.Error("init over an existing descriptor should fail without --force")
	}
	if _, _, err := h.run("init", "--force", dir); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}
