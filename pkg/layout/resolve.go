// SPDX-License-Identifier: MPL-2.0

package layout

import (
	"fmt"

	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

// Directory and file names used by the conventions.
const (
	SrcGenDir      = "src-gen"
	JavaDir        = "java"
	ResourcesDir   = "resources"
	MetaInfDir     = "META-INF"
	ManifestFile   = "MANIFEST.MF"
	DescriptorFile = "plugin.xml"
	ModelDir       = "model"
	AssetsDir      = "assets"

	// DefaultOutputDir is the output root, relative to the project root,
	// used when none is set.
	DefaultOutputDir = "build"
)

// Resolve installs the layout conventions on cfg and registers its
// directories with cfg's source set in sets. The generated source directory
// joins the compilable directories; the parents of the META-INF directory
// and of every capability path join the resource directories.
//
// Resolve performs no file I/O and computes no paths. Calling it again for
// the same configuration changes nothing.
func Resolve(cfg *subproject.Config, sets *SourceSets) error {
	ss, ok := sets.Get(cfg.SourceSet())
	if !ok {
		return &subproject.ConfigError{
			Project: cfg.Name(),
			Err:     fmt.Errorf("%w: %s", ErrUnknownSourceSet, cfg.SourceSet()),
		}
	}
	if cfg.Frozen() {
		return &subproject.ConfigError{Project: cfg.Name(), Err: subproject.ErrFrozen}
	}

	sourceSet := string(cfg.SourceSet())
	root := cfg.Root()

	cfg.OutputRoot.SetDefault(func() (types.FilesystemPath, error) {
		return fspath.JoinStr(root, DefaultOutputDir), nil
	})
	cfg.Src.SetDefault(ss.firstSourceDir)
	cfg.SrcGen.SetDefault(under(cfg.OutputRoot, SrcGenDir, sourceSet, JavaDir))
	cfg.ResourcesGen.SetDefault(under(cfg.OutputRoot, SrcGenDir, sourceSet, ResourcesDir))
	cfg.MetaInf.SetDefault(under(cfg.ResourcesGen, MetaInfDir))

	resourceCells := []*subproject.PathCell{cfg.MetaInf}
	if b, err := subproject.BundleOf(cfg); err == nil {
		b.Manifest.SetDefault(under(cfg.MetaInf, ManifestFile))
		b.Descriptor.SetDefault(under(cfg.ResourcesGen, DescriptorFile))
		resourceCells = append(resourceCells, b.Descriptor)
	}
	if r, err := subproject.RuntimeOf(cfg); err == nil {
		r.Model.SetDefault(under(cfg.ResourcesGen, ModelDir))
		resourceCells = append(resourceCells, r.Model)
	}
	if w, err := subproject.WebOf(cfg); err == nil {
		w.Assets.SetDefault(under(cfg.ResourcesGen, AssetsDir))
		resourceCells = append(resourceCells, w.Assets)
	}

	if ss.markRegistered(cfg) {
		return nil
	}
	ss.addSource(cellSource(cfg.SrcGen))
	for _, cell := range resourceCells {
		ss.addResource(parentOf(cell))
	}
	return nil
}

// ResolveAll resolves every configuration, stopping at the first fault.
func ResolveAll(sets *SourceSets, cfgs ...*subproject.Config) error {
	for _, cfg := range cfgs {
		if err := Resolve(cfg, sets); err != nil {
			return err
		}
	}
	return nil
}

func under(base *subproject.PathCell, elem ...string) func() (types.FilesystemPath, error) {
	return func() (types.FilesystemPath, error) {
		p, err := base.Get()
		if err != nil {
			return "", err
		}
		return fspath.JoinStr(p, elem...), nil
	}
}
