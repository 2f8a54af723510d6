// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"path/filepath"

	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/layout"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

// Configured is a project entry turned into a resolved configuration.
type Configured struct {
	Project    Project
	Config     *subproject.Config
	SourceSets *layout.SourceSets
}

// Configure builds and resolves a sub-project configuration for every
// project, in descriptor order. Faults name the offending project and are
// raised before any path is computed.
func (w *Workspace) Configure() ([]*Configured, error) {
	out := make([]*Configured, 0, len(w.Projects))
	for _, p := range w.Projects {
		c, err := w.configure(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (w *Workspace) configure(p Project) (*Configured, error) {
	caps, err := p.capabilities()
	if err != nil {
		return nil, err
	}
	root := types.FilesystemPath(w.ProjectDir(p))
	cfg, err := subproject.New(types.ProjectName(p.Name), root, types.SourceSetName(p.SourceSet), caps...)
	if err != nil {
		return nil, err
	}

	if err := cfg.OutputRoot.Set(resolveDir(root, p.OutputDir)); err != nil {
		return nil, &subproject.ConfigError{Project: cfg.Name(), Err: err}
	}
	if p.IconsDir != "" {
		if err := cfg.Icons.Set(resolveDir(root, p.IconsDir)); err != nil {
			return nil, &subproject.ConfigError{Project: cfg.Name(), Err: err}
		}
	}

	sets := &layout.SourceSets{}
	for _, name := range p.SourceSets {
		ssName := types.SourceSetName(name)
		if err := ssName.Validate(); err != nil {
			return nil, &subproject.ConfigError{Project: cfg.Name(), Err: err}
		}
		set := layout.NewSourceSet(ssName)
		if ssName == cfg.SourceSet() && len(p.SrcDirs) > 0 {
			for _, d := range p.SrcDirs {
				set.AddSourceDir(resolveDir(root, d))
			}
		} else {
			set.AddSourceDir(fspath.JoinStr(root, "src", name, layout.JavaDir))
		}
		set.AddResourceDir(fspath.JoinStr(root, "src", name, layout.ResourcesDir))
		sets.Add(set)
	}

	if err := layout.Resolve(cfg, sets); err != nil {
		return nil, err
	}
	return &Configured{Project: p, Config: cfg, SourceSets: sets}, nil
}

func resolveDir(root types.FilesystemPath, dir string) types.FilesystemPath {
	if filepath.IsAbs(dir) {
		return fspath.Clean(types.FilesystemPath(dir))
	}
	return fspath.JoinStr(root, filepath.FromSlash(dir))
}
