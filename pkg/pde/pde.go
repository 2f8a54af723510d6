// SPDX-License-Identifier: MPL-2.0

// Package pde prepares a bundle project for Eclipse PDE: it unpacks the
// bundle metadata from the built jar, writes build.properties and points
// the project's PDE preferences at the unpacked directory.
package pde

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/genlayout/genlayout/pkg/artifact"
	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/settings"
	"github.com/genlayout/genlayout/pkg/types"
)

// Well-known names.
const (
	BuildPropertiesFile = "build.properties"
	SettingsFile        = ".settings/org.eclipse.pde.core.prefs"
	DefaultDir          = "build/pde"

	PreferencesVersionKey = "eclipse.preferences.version"
	BundleRootPathKey     = "BUNDLE_ROOT_PATH"
	BinIncludesKey        = "bin.includes"
	DefaultBinIncludes    = "META-INF/,plugin.xml"
)

type (
	// Options configures Configure. Only ProjectDir and Jar are required.
	Options struct {
		ProjectDir types.FilesystemPath
		Jar        types.FilesystemPath
		// Dir defaults to ProjectDir/build/pde.
		Dir types.FilesystemPath
		// Settings defaults to ProjectDir/.settings/org.eclipse.pde.core.prefs.
		Settings types.FilesystemPath
		// BuildProperties defaults to bin.includes=META-INF/,plugin.xml.
		BuildProperties *settings.Settings
		Logger          *log.Logger
	}

	// Result reports what Configure wrote.
	Result struct {
		Dir            types.FilesystemPath
		Copied         []string
		BundleRootPath string
	}
)

// DefaultBuildProperties returns the build.properties entries used when
// none are configured.
func DefaultBuildProperties() *settings.Settings {
	return settings.FromPairs(BinIncludesKey, DefaultBinIncludes)
}

// Configure copies META-INF/MANIFEST.MF and plugin.xml out of the jar into
// the PDE directory, writes build.properties there, and updates the PDE
// preferences file with the preferences version and the bundle root path
// relative to the project directory. Existing unrelated preferences are
// kept in place.
func Configure(opts Options) (Result, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Dir == "" {
		opts.Dir = fspath.JoinStr(opts.ProjectDir, filepath.FromSlash(DefaultDir))
	}
	if opts.Settings == "" {
		opts.Settings = fspath.JoinStr(opts.ProjectDir, filepath.FromSlash(SettingsFile))
	}
	if opts.BuildProperties == nil {
		opts.BuildProperties = DefaultBuildProperties()
	}
	res := Result{Dir: opts.Dir}

	if err := os.MkdirAll(string(opts.Dir), 0o755); err != nil {
		return res, fmt.Errorf("creating PDE directory: %w", err)
	}
	for _, entry := range []string{artifact.ManifestEntry, artifact.DescriptorEntry} {
		copied, err := copyEntry(opts.Jar, entry, opts.Dir)
		if err != nil {
			return res, err
		}
		if copied {
			res.Copied = append(res.Copied, entry)
		}
	}

	buildProps := fspath.JoinStr(opts.Dir, BuildPropertiesFile)
	if err := settings.WriteFile(string(buildProps), opts.BuildProperties, ""); err != nil {
		return res, err
	}

	prefs, err := settings.ReadFile(string(opts.Settings))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		prefs = settings.New()
	case err != nil:
		return res, fmt.Errorf("loading PDE preferences: %w", err)
	}

	rootPath, err := fspath.RelSlash(opts.ProjectDir, opts.Dir)
	if err != nil {
		return res, err
	}
	prefs.Put(PreferencesVersionKey, "1")
	prefs.Put(BundleRootPathKey, rootPath)
	if err := settings.WriteFile(string(opts.Settings), prefs, ""); err != nil {
		return res, err
	}
	res.BundleRootPath = rootPath

	opts.Logger.Debug("configured PDE", "dir", opts.Dir, "bundle_root", rootPath, "copied", res.Copied)
	return res, nil
}

func copyEntry(jar types.FilesystemPath, entry string, dir types.FilesystemPath) (bool, error) {
	data, ok, err := artifact.ReadEntry(jar, entry)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	dst := fspath.JoinStr(dir, filepath.FromSlash(entry))
	if err := os.MkdirAll(string(fspath.Dir(dst)), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", fspath.Dir(dst), err)
	}
	if err := os.WriteFile(string(dst), data, 0o644); err != nil {
		return false, fmt.Errorf("copying %s: %w", entry, err)
	}
	return true, nil
}
