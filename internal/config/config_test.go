// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/genlayout/genlayout/internal/issue"
	"github.com/genlayout/genlayout/internal/testutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty without a file", path)
	}
	want := DefaultConfig()
	if cfg.UI != want.UI || cfg.Build.StateDir != want.Build.StateDir || cfg.Watch != want.Watch {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
ui: color_scheme: "dark"
build: {
	parallelism: 3
	source_extensions: ["java", "kt"]
}
watch: debounce: "2s"
`)
	cfg, path, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("path = %q", path)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark || cfg.Build.Parallelism != 3 || cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Load() = %+v", cfg)
	}
	if !slices.Equal(cfg.Build.SourceExtensions, []string{"java", "kt"}) {
		t.Errorf("SourceExtensions = %v", cfg.Build.SourceExtensions)
	}
	if cfg.Build.StateDir != ".genlayout/state" {
		t.Errorf("unset keys should keep defaults, StateDir = %q", cfg.Build.StateDir)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `build: parallelism: -1`)
	_, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *issue.ActionableError", err)
	}
	if ae.Issue != issue.ConfigLoadFailedId || ae.Operation != "load configuration" {
		t.Errorf("ActionableError = %+v", ae)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `container_engine: "docker"`)
	if _, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir}); err == nil {
		t.Error("unknown keys should be rejected by the closed schema")
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v", err)
	}
}

// Environment overrides mutate the process environment and cannot run in
// parallel.
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GENLAYOUT_BUILD_PARALLELISM", "7")
	t.Setenv("GENLAYOUT_UI_VERBOSE", "true")
	t.Setenv("GENLAYOUT_WATCH_DEBOUNCE", "1s")

	dir := writeConfig(t, `build: parallelism: 2`)
	cfg, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Build.Parallelism != 7 || !cfg.UI.Verbose || cfg.Watch.Debounce != time.Second {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_EnvOverrideInvalid(t *testing.T) {
	t.Setenv("GENLAYOUT_UI_COLOR_SCHEME", "neon")

	_, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("error = %v, want ErrInvalidColorScheme", err)
	}
}

func TestCreateDefault_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.cue")
	if err := CreateDefault(path); err != nil {
		t.Fatalf("CreateDefault() error = %v", err)
	}
	if err := CreateDefault(path); !errors.Is(err, ErrConfigExists) {
		t.Errorf("second CreateDefault() error = %v", err)
	}
	cfg, resolved, err := Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if resolved != path || cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Load() = %+v from %q", cfg, resolved)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Build.Parallelism = -2
	cfg.Build.SourceExtensions = []string{"java", "."}
	cfg.UI.ColorScheme = "x"
	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) || len(invalid.FieldErrors) != 3 {
		t.Fatalf("Validate() = %v", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("errors.Is(ErrInvalidConfig) should hold")
	}
	if DefaultConfig().Validate() != nil {
		t.Error("defaults should be valid")
	}
}

func TestFilePathAndValues(t *testing.T) {
	t.Parallel()

	got, err := FilePath(LoadOptions{ConfigDirPath: "/etc/gl"})
	if err != nil || got != filepath.Join("/etc/gl", "config.cue") {
		t.Errorf("FilePath() = %q, %v", got, err)
	}
	vals := Values(DefaultConfig())
	if len(vals) != len(Keys) {
		t.Fatalf("Values() has %d entries, want %d", len(vals), len(Keys))
	}
	for i, kv := range vals {
		if kv[0] != Keys[i] {
			t.Errorf("Values()[%d] key = %q, want %q", i, kv[0], Keys[i])
		}
	}
}

func TestConfigDir_FollowsHome(t *testing.T) {
	// Not parallel: points the home directory elsewhere.
	home := t.TempDir()
	testutil.SetHomeDir(t, home)

	want := filepath.Join(home, AppName)
	if runtime.GOOS == "darwin" {
		want = filepath.Join(home, "Library", "Application Support", AppName)
	}
	got, err := ConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("ConfigDir() = %q, want %q", got, want)
	}

	path, err := FilePath(LoadOptions{})
	if err != nil || path != filepath.Join(want, ConfigFileName+"."+ConfigFileExt) {
		t.Errorf("FilePath() = %q, %v", path, err)
	}
}
