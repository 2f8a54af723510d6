// SPDX-License-Identifier: MPL-2.0

package layout

import (
	"fmt"

	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

// Paths is a resolved, read-only copy of a sub-project layout. Optional
// paths are empty when the project lacks the capability.
type Paths struct {
	Project      string   `json:"project" yaml:"project" toml:"project"`
	SourceSet    string   `json:"source_set" yaml:"source_set" toml:"source_set"`
	Capabilities []string `json:"capabilities" yaml:"capabilities" toml:"capabilities"`
	Root         string   `json:"root" yaml:"root" toml:"root"`
	OutputRoot   string   `json:"output_root" yaml:"output_root" toml:"output_root"`
	Src          string   `json:"src" yaml:"src" toml:"src"`
	SrcGen       string   `json:"src_gen" yaml:"src_gen" toml:"src_gen"`
	ResourcesGen string   `json:"resources_gen" yaml:"resources_gen" toml:"resources_gen"`
	MetaInf      string   `json:"meta_inf" yaml:"meta_inf" toml:"meta_inf"`
	Icons        string   `json:"icons,omitempty" yaml:"icons,omitempty" toml:"icons,omitempty"`
	Manifest     string   `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty"`
	Descriptor   string   `json:"descriptor,omitempty" yaml:"descriptor,omitempty" toml:"descriptor,omitempty"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	Assets       string   `json:"assets,omitempty" yaml:"assets,omitempty" toml:"assets,omitempty"`

	// ManifestRel is the manifest path relative to META-INF and
	// DescriptorRel the descriptor path relative to the project root, both
	// with "/" separators.
	ManifestRel   string `json:"manifest_rel,omitempty" yaml:"manifest_rel,omitempty" toml:"manifest_rel,omitempty"`
	DescriptorRel string `json:"descriptor_rel,omitempty" yaml:"descriptor_rel,omitempty" toml:"descriptor_rel,omitempty"`
}

// Snapshot reads every cell of cfg and returns the resolved paths.
// Reading finalizes the cells.
func Snapshot(cfg *subproject.Config) (Paths, error) {
	p := Paths{
		Project:   cfg.Name().String(),
		SourceSet: cfg.SourceSet().String(),
		Root:      cfg.Root().String(),
	}
	caps := cfg.Capabilities()
	p.Capabilities = make([]string, 0, len(caps))
	for _, cp := range caps {
		p.Capabilities = append(p.Capabilities, cp.String())
	}

	read := func(dst *string, cell *subproject.PathCell) error {
		v, err := cell.Get()
		if err != nil {
			return &subproject.ConfigError{Project: cfg.Name(), Err: err}
		}
		*dst = v.String()
		return nil
	}
	for _, f := range []struct {
		dst  *string
		cell *subproject.PathCell
	}{
		{&p.OutputRoot, cfg.OutputRoot},
		{&p.Src, cfg.Src},
		{&p.SrcGen, cfg.SrcGen},
		{&p.ResourcesGen, cfg.ResourcesGen},
		{&p.MetaInf, cfg.MetaInf},
	} {
		if err := read(f.dst, f.cell); err != nil {
			return Paths{}, err
		}
	}
	if cfg.Icons.IsPresent() {
		if err := read(&p.Icons, cfg.Icons); err != nil {
			return Paths{}, err
		}
	}

	if b, err := subproject.BundleOf(cfg); err == nil {
		if err := read(&p.Manifest, b.Manifest); err != nil {
			return Paths{}, err
		}
		if err := read(&p.Descriptor, b.Descriptor); err != nil {
			return Paths{}, err
		}
		if p.ManifestRel, err = fspath.RelSlashJoined(types.FilesystemPath(p.MetaInf), types.FilesystemPath(p.Manifest)); err != nil {
			return Paths{}, fmt.Errorf("project %s: %w", cfg.Name(), err)
		}
		if p.DescriptorRel, err = fspath.RelSlashJoined(cfg.Root(), types.FilesystemPath(p.Descriptor)); err != nil {
			return Paths{}, fmt.Errorf("project %s: %w", cfg.Name(), err)
		}
	}
	if r, err := subproject.RuntimeOf(cfg); err == nil {
		if err := read(&p.Model, r.Model); err != nil {
			return Paths{}, err
		}
	}
	if w, err := subproject.WebOf(cfg); err == nil {
		if err := read(&p.Assets, w.Assets); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}
