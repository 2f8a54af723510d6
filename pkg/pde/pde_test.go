// SPDX-License-Identifier: MPL-2.0

package pde

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/genlayout/genlayout/pkg/artifact"
	"github.com/genlayout/genlayout/pkg/settings"
	"github.com/genlayout/genlayout/pkg/types"
)

func buildJar(t *testing.T, dir string, withDescriptor bool) types.FilesystemPath {
	t.Helper()
	content := filepath.Join(dir, "content")
	if err := os.MkdirAll(content, 0o755); err != nil {
		t.Fatal(err)
	}
	if withDescriptor {
		if err := os.WriteFile(filepath.Join(content, "plugin.xml"), []byte("<plugin/>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	jar := types.FilesystemPath(filepath.Join(dir, "build", "libs", "ui.jar"))
	spec := artifact.NewJarSpec("ui:jar", jar).From(types.FilesystemPath(content))
	spec.Manifest().Main().Put("Bundle-SymbolicName", "org.example.dsl.ui")
	if err := artifact.Package(context.Background(), spec); err != nil {
		t.Fatal(err)
	}
	return jar
}

func TestConfigure(t *testing.T) {
	t.Parallel()

	proj := t.TempDir()
	jar := buildJar(t, proj, true)

	prefsPath := filepath.Join(proj, ".settings", "org.eclipse.pde.core.prefs")
	if err := settings.WriteFile(prefsPath, settings.FromPairs("pluginProject.extensions", "true", BundleRootPathKey, "old/"), ""); err != nil {
		t.Fatal(err)
	}

	res, err := Configure(Options{ProjectDir: types.FilesystemPath(proj), Jar: jar})
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if res.BundleRootPath != "build/pde/" {
		t.Errorf("BundleRootPath = %q, want %q", res.BundleRootPath, "build/pde/")
	}
	if !slices.Equal(res.Copied, []string{artifact.ManifestEntry, artifact.DescriptorEntry}) {
		t.Errorf("Copied = %v", res.Copied)
	}

	pdeDir := filepath.Join(proj, "build", "pde")
	if _, err := os.Stat(filepath.Join(pdeDir, "META-INF", "MANIFEST.MF")); err != nil {
		t.Errorf("manifest not copied: %v", err)
	}
	bp, err := os.ReadFile(filepath.Join(pdeDir, BuildPropertiesFile))
	if err != nil {
		t.Fatal(err)
	}
	if want := "\nbin.includes=META-INF/,plugin.xml\n"; string(bp) != want {
		t.Errorf("build.properties = %q, want %q", bp, want)
	}

	prefs, err := settings.ReadFile(prefsPath)
	if err != nil {
		t.Fatal(err)
	}
	wantKeys := []string{"pluginProject.extensions", BundleRootPathKey, PreferencesVersionKey}
	if got := prefs.Keys(); !slices.Equal(got, wantKeys) {
		t.Errorf("prefs keys = %v, want %v", got, wantKeys)
	}
	if v, _ := prefs.Get(BundleRootPathKey); v != "build/pde/" {
		t.Errorf("%s = %q", BundleRootPathKey, v)
	}
}

func TestConfigure_StableAcrossRuns(t *testing.T) {
	t.Parallel()

	proj := t.TempDir()
	jar := buildJar(t, proj, false)
	opts := Options{ProjectDir: types.FilesystemPath(proj), Jar: jar}

	if _, err := Configure(opts); err != nil {
		t.Fatal(err)
	}
	prefsPath := filepath.Join(proj, ".settings", "org.eclipse.pde.core.prefs")
	first, err := os.ReadFile(prefsPath)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Configure(opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(prefsPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("prefs changed between runs:\n%q\n%q", first, second)
	}
	if want := "\neclipse.preferences.version=1\nBUNDLE_ROOT_PATH=build/pde/\n"; string(second) != want {
		t.Errorf("prefs = %q, want %q", second, want)
	}
	if slices.Contains(res.Copied, artifact.DescriptorEntry) {
		t.Error("plugin.xml reported as copied although the jar has none")
	}
}

func TestConfigure_CustomDirAndProperties(t *testing.T) {
	t.Parallel()

	proj := t.TempDir()
	jar := buildJar(t, proj, true)
	dir := types.FilesystemPath(filepath.Join(proj, "ide"))

	res, err := Configure(Options{
		ProjectDir:      types.FilesystemPath(proj),
		Jar:             jar,
		Dir:             dir,
		BuildProperties: settings.FromPairs(BinIncludesKey, "META-INF/,plugin.xml,icons/"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.BundleRootPath != "ide/" {
		t.Errorf("BundleRootPath = %q", res.BundleRootPath)
	}
	bp, err := settings.ReadFile(filepath.Join(string(dir), BuildPropertiesFile))
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := bp.Get(BinIncludesKey); v != "META-INF/,plugin.xml,icons/" {
		t.Errorf("bin.includes = %q", v)
	}
}

func TestConfigure_MissingJar(t *testing.T) {
	t.Parallel()

	proj := t.TempDir()
	_, err := Configure(Options{ProjectDir: types.FilesystemPath(proj), Jar: types.FilesystemPath(filepath.Join(proj, "none.jar"))})
	if err == nil {
		t.Error("Configure() should fail without a jar")
	}
}
