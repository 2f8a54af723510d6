// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"bytes"
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/genlayout/genlayout/pkg/manifest"
	"github.com/genlayout/genlayout/pkg/types"
)

func TestMerger_OverwritePolicy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.MF")
	b := filepath.Join(dir, "b.MF")
	write(t, a, "k1: v1\r\n")
	write(t, b, "k1: v2\r\nk2: v3\r\n")

	spec := NewJarSpec("dsl:jar", types.FilesystemPath(filepath.Join(dir, "dsl.jar")))
	m := NewMerger("build-1")
	got, err := m.Merge(context.Background(), spec, []types.FilesystemPath{types.FilesystemPath(a), types.FilesystemPath(b)})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got != OutcomeMerged {
		t.Fatalf("Merge() = %v, want merged", got)
	}
	main := spec.Manifest().Main()
	if keys := main.Keys(); !slices.Equal(keys, []string{manifest.VersionKey, "k1", "k2"}) {
		t.Errorf("Keys() = %v", keys)
	}
	if v, _ := main.Get("k1"); v != "v2" {
		t.Errorf("k1 = %q, want v2", v)
	}
	if v, _ := main.Get("k2"); v != "v3" {
		t.Errorf("k2 = %q, want v3", v)
	}
}

func TestMerger_SkipsEmptyInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	spec := NewJarSpec("ide:jar", types.FilesystemPath(filepath.Join(dir, "ide.jar")))
	spec.Manifest().Main().Put("Bundle-Name", "IDE")
	before := spec.Manifest().Marshal()

	m := NewMerger("build-1")
	for _, inputs := range [][]types.FilesystemPath{
		nil,
		{types.FilesystemPath(filepath.Join(dir, "missing.MF"))},
	} {
		got, err := m.Merge(context.Background(), spec, inputs)
		if err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
		if got != OutcomeSkipped {
			t.Errorf("Merge(%v) = %v, want skipped", inputs, got)
		}
	}
	if after := spec.Manifest().Marshal(); !bytes.Equal(before, after) {
		t.Errorf("manifest changed:\n%q\n%q", before, after)
	}
	if m.Merged(spec.ID()) {
		t.Error("a skipped target must not count as merged")
	}
	if got, _ := m.Merge(context.Background(), nil, nil); got != OutcomeSkipped {
		t.Errorf("Merge(nil target) = %v, want skipped", got)
	}
}

func TestMerger_OncePerBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "gen.MF")
	write(t, in, "Bundle-Version: 1.0.0\r\n")
	inputs := []types.FilesystemPath{types.FilesystemPath(in)}
	spec := NewJarSpec("rt:jar", types.FilesystemPath(filepath.Join(dir, "rt.jar")))

	m := NewMerger("build-1")
	if got, _ := m.Merge(context.Background(), spec, inputs); got != OutcomeMerged {
		t.Fatalf("first Merge() = %v", got)
	}
	spec.Manifest().Main().Put("Bundle-Version", "local-edit")
	if got, _ := m.Merge(context.Background(), spec, inputs); got != OutcomeAlreadyMerged {
		t.Fatalf("second Merge() = %v, want already merged", got)
	}
	if v, _ := spec.Manifest().Main().Get("Bundle-Version"); v != "local-edit" {
		t.Error("second merge touched the target")
	}

	next := NewMerger("build-2")
	if got, _ := next.Merge(context.Background(), spec, inputs); got != OutcomeMerged {
		t.Errorf("Merge() in a new build = %v, want merged", got)
	}
}

func TestMerger_MalformedInputLeavesTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.MF")
	bad := filepath.Join(dir, "bad.MF")
	write(t, good, "A: 1\r\n")
	write(t, bad, "not a manifest\r\n")
	spec := NewJarSpec("x", types.FilesystemPath(filepath.Join(dir, "x.jar")))

	m := NewMerger("b", WithPolicy(manifest.KeepBaseValue))
	_, err := m.Merge(context.Background(), spec, []types.FilesystemPath{types.FilesystemPath(good), types.FilesystemPath(bad)})
	if err == nil {
		t.Fatal("Merge() should fail on a malformed input")
	}
	if spec.Manifest().Main().Has("A") {
		t.Error("target modified despite the failure")
	}
}
