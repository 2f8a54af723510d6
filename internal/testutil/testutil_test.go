// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

func TestWriteReadTree(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"a.txt":         "a",
		"nested/dir/b":  "b",
		"nested/c.java": "class C {}",
	}
	WriteTree(t, root, files)

	got := ReadTree(t, root)
	if len(got) != len(files) {
		t.Fatalf("ReadTree() = %v", got)
	}
	for k, v := range files {
		if got[k] != v {
			t.Errorf("ReadTree()[%q] = %q, want %q", k, got[k], v)
		}
	}
	if !Exists(t, filepath.Join(root, "nested", "dir")) {
		t.Error("parent directories should exist")
	}
}

func TestReadTree_MissingRoot(t *testing.T) {
	t.Parallel()

	if got := ReadTree(t, filepath.Join(t.TempDir(), "absent")); len(got) != 0 {
		t.Errorf("ReadTree() = %v, want empty", got)
	}
}
