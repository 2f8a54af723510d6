// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"path/filepath"
	"testing"

	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/types"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	got := fspath.Join(types.FilesystemPath("build"), types.FilesystemPath("src-gen"))
	want := types.FilesystemPath(filepath.Join("build", "src-gen"))
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
}

func TestJoinStr(t *testing.T) {
	t.Parallel()

	got := fspath.JoinStr(types.FilesystemPath("build"), "src-gen", "main", "java")
	want := types.FilesystemPath(filepath.Join("build", "src-gen", "main", "java"))
	if got != want {
		t.Errorf("JoinStr() = %q, want %q", got, want)
	}
}

func TestDirAndBase(t *testing.T) {
	t.Parallel()

	p := types.FilesystemPath(filepath.Join("res", "META-INF", "MANIFEST.MF"))
	if got, want := fspath.Dir(p), types.FilesystemPath(filepath.Join("res", "META-INF")); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
	if got := fspath.Base(p); got != "MANIFEST.MF" {
		t.Errorf("Base() = %q", got)
	}
}

func TestAbs(t *testing.T) {
	t.Parallel()

	got, err := fspath.Abs(types.FilesystemPath("relative"))
	if err != nil {
		t.Fatalf("Abs() error = %v", err)
	}
	if !fspath.IsAbs(got) {
		t.Errorf("Abs() = %q, want absolute path", got)
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	got := fspath.Clean(types.FilesystemPath("a/b/../c/./d"))
	want := types.FilesystemPath(filepath.Clean("a/b/../c/./d"))
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestRelSlash(t *testing.T) {
	t.Parallel()

	root := types.FilesystemPath(filepath.FromSlash("/proj"))
	tests := []struct {
		name       string
		target     string
		wantSlash  string
		wantJoined string
	}{
		{"nested pde dir", "/proj/build/pde", "build/pde/", "build/pde"},
		{"single segment", "/proj/build", "build/", "build"},
		{"equal paths", "/proj", "", ""},
		{"trailing separator ignored", "/proj/build/pde/", "build/pde/", "build/pde"},
		{"sibling directory", "/other/x", "../other/x/", "../other/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target := types.FilesystemPath(filepath.FromSlash(tt.target))

			got, err := fspath.RelSlash(root, target)
			if err != nil {
				t.Fatalf("RelSlash() error = %v", err)
			}
			if got != tt.wantSlash {
				t.Errorf("RelSlash() = %q, want %q", got, tt.wantSlash)
			}

			joined, err := fspath.RelSlashJoined(root, target)
			if err != nil {
				t.Fatalf("RelSlashJoined() error = %v", err)
			}
			if joined != tt.wantJoined {
				t.Errorf("RelSlashJoined() = %q, want %q", joined, tt.wantJoined)
			}
		})
	}
}

func TestRel_MixedAbsoluteness(t *testing.T) {
	t.Parallel()

	abs, err := fspath.Abs(types.FilesystemPath("x"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fspath.RelSlash(abs, types.FilesystemPath("relative")); err == nil {
		t.Error("RelSlash() of absolute root and relative target should fail")
	}
}
