// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/genlayout/genlayout/pkg/manifest"
	"github.com/genlayout/genlayout/pkg/types"
)

const (
	// ManifestEntry is the archive path of the manifest.
	ManifestEntry = "META-INF/MANIFEST.MF"
	// DescriptorEntry is the archive path of the plugin descriptor.
	DescriptorEntry = "plugin.xml"
)

// entryTime is stamped on every entry so equal inputs give equal archives.
var entryTime = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

type (
	// Target is a packaged artifact whose metadata can still change before
	// it is written.
	Target interface {
		ID() string
		Manifest() *manifest.Manifest
		Descriptor() types.FilesystemPath
	}

	// JarSpec describes a jar: where it goes, which directories it is built
	// from, its manifest and an optional plugin descriptor.
	JarSpec struct {
		id         string
		path       types.FilesystemPath
		dirs       []types.FilesystemPath
		manifest   *manifest.Manifest
		descriptor types.FilesystemPath
	}
)

// NewJarSpec returns a spec for the jar written to path. The manifest
// starts with only Manifest-Version.
func NewJarSpec(id string, path types.FilesystemPath) *JarSpec {
	return &JarSpec{id: id, path: path, manifest: manifest.New()}
}

// ID implements Target.
func (j *JarSpec) ID() string { return j.id }

// Manifest implements Target.
func (j *JarSpec) Manifest() *manifest.Manifest { return j.manifest }

// Descriptor implements Target.
func (j *JarSpec) Descriptor() types.FilesystemPath { return j.descriptor }

// SetDescriptor sets the plugin descriptor added as plugin.xml when no
// content directory provides one.
func (j *JarSpec) SetDescriptor(p types.FilesystemPath) { j.descriptor = p }

// Path returns the archive location.
func (j *JarSpec) Path() types.FilesystemPath { return j.path }

// From adds content directories. A missing directory contributes nothing.
// When two directories hold the same relative path the first one wins.
func (j *JarSpec) From(dirs ...types.FilesystemPath) *JarSpec {
	j.dirs = append(j.dirs, dirs...)
	return j
}

// Dirs returns the content directories.
func (j *JarSpec) Dirs() []types.FilesystemPath { return slices.Clone(j.dirs) }

// Package writes the jar described by spec. The manifest comes first,
// then every other entry sorted by name, all with a fixed timestamp. Any
// META-INF/MANIFEST.MF found in the content directories is ignored in
// favour of the JarSpec manifest.
func Package(ctx context.Context, spec *JarSpec) error {
	entries, err := collect(ctx, spec)
	if err != nil {
		return err
	}

	dst := string(spec.path)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating jar directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".jar-*")
	if err != nil {
		return fmt.Errorf("creating jar: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	zw := zip.NewWriter(tmp)
	if err := writeEntry(zw, ManifestEntry, func(w io.Writer) error { return spec.manifest.Write(w) }); err != nil {
		_ = tmp.Close()
		return err
	}
	for _, name := range sortedKeys(entries) {
		if err := ctx.Err(); err != nil {
			_ = tmp.Close()
			return err
		}
		src := entries[name]
		if err := writeEntry(zw, name, func(w io.Writer) error { return copyFile(w, src) }); err != nil {
			_ = tmp.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("finishing jar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing jar: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("installing jar: %w", err)
	}
	return nil
}

// collect maps archive names to source files.
func collect(ctx context.Context, spec *JarSpec) (map[string]string, error) {
	entries := make(map[string]string)
	for _, dir := range spec.dirs {
		root := string(dir)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					return fs.SkipDir
				}
				return err
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			if name == ManifestEntry {
				return nil
			}
			if _, dup := entries[name]; !dup {
				entries[name] = path
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collecting %s: %w", root, err)
		}
	}
	if spec.descriptor != "" {
		if _, ok := entries[DescriptorEntry]; !ok {
			if _, err := os.Stat(string(spec.descriptor)); err == nil {
				entries[DescriptorEntry] = string(spec.descriptor)
			}
		}
	}
	return entries, nil
}

func writeEntry(zw *zip.Writer, name string, fill func(io.Writer) error) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: entryTime}
	hdr.SetMode(0o644)
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if err := fill(w); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ReadEntry returns the contents of the named entry of the jar at path.
// The boolean is false when the jar has no such entry.
func ReadEntry(path types.FilesystemPath, name string) ([]byte, bool, error) {
	zr, err := zip.OpenReader(string(path))
	if err != nil {
		return nil, false, fmt.Errorf("opening jar: %w", err)
	}
	defer func() { _ = zr.Close() }()
	for _, f := range zr.File {
		if f.Name != name || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false, fmt.Errorf("opening %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, false, fmt.Errorf("reading %s: %w", name, err)
		}
		return data, true, nil
	}
	return nil, false, nil
}
