// SPDX-License-Identifier: MPL-2.0

// Package workspace loads genlayout.cue, the descriptor listing the
// generated sub-projects of a repository, and turns it into resolved
// sub-project configurations.
package workspace

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/genlayout/genlayout/pkg/cueutil"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

// FileName is the descriptor looked up in the workspace root.
const FileName = "genlayout.cue"

//go:embed workspace_schema.cue
var schema []byte

var (
	// ErrRoleTaken is returned when two projects claim the same role.
	ErrRoleTaken = errors.New("role already applied")

	// ErrDuplicateProject is returned when two projects share a name.
	ErrDuplicateProject = errors.New("duplicate project name")

	// ErrMissingProjectDir is returned when a project directory does not
	// exist.
	ErrMissingProjectDir = errors.New("project directory does not exist")
)

// Role is the part a sub-project plays for the generator.
type Role string

// Known roles.
const (
	RoleRuntime           Role = "runtime"
	RoleRuntimeTest       Role = "runtime_test"
	RoleGenericIDE        Role = "generic_ide"
	RoleEclipsePlugin     Role = "eclipse_plugin"
	RoleEclipsePluginTest Role = "eclipse_plugin_test"
	RoleWeb               Role = "web"
)

// Capability returns the capability the role implies.
func (r Role) Capability() (subproject.Capability, bool) {
	switch r {
	case RoleRuntime:
		return subproject.CapRuntime, true
	case RoleRuntimeTest, RoleGenericIDE, RoleEclipsePlugin, RoleEclipsePluginTest:
		return subproject.CapBundle, true
	case RoleWeb:
		return subproject.CapWeb, true
	}
	return 0, false
}

// SourceSet returns the source set the role generates into.
func (r Role) SourceSet() types.SourceSetName {
	if strings.HasSuffix(string(r), "_test") {
		return types.SourceSetTest
	}
	return types.SourceSetMain
}

// EnvSuffix returns the role in upper case for environment variable names.
func (r Role) EnvSuffix() string { return strings.ToUpper(string(r)) }

type (
	// Workspace is a decoded genlayout.cue.
	Workspace struct {
		// Root is the directory holding the descriptor.
		Root string `json:"-"`

		OutputDir        string     `json:"output_dir,omitempty"`
		SourceExtensions []string   `json:"source_extensions,omitempty"`
		Generator        *Generator `json:"generator,omitempty"`
		Projects         []Project  `json:"projects"`
	}

	// Generator describes the script that produces the generated trees.
	Generator struct {
		Script string            `json:"script"`
		Inputs []string          `json:"inputs,omitempty"`
		Dir    string            `json:"dir,omitempty"`
		Env    map[string]string `json:"env,omitempty"`
	}

	// Project is one sub-project entry.
	Project struct {
		Name         string   `json:"name"`
		Dir          string   `json:"dir"`
		Role         Role     `json:"role,omitempty"`
		SourceSet    string   `json:"source_set,omitempty"`
		SourceSets   []string `json:"source_sets,omitempty"`
		Capabilities []string `json:"capabilities,omitempty"`
		SrcDirs      []string `json:"src_dirs,omitempty"`
		IconsDir     string   `json:"icons_dir,omitempty"`
		OutputDir    string   `json:"output_dir,omitempty"`
		PDE          bool     `json:"pde,omitempty"`
	}
)

// Load reads and validates the descriptor at path. The workspace root is
// the descriptor's directory.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workspace: %w", err)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	ws, err := Parse(data, abs, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if err := ws.CheckDirs(); err != nil {
		return nil, err
	}
	return ws, nil
}

// Find walks up from dir to the first directory holding genlayout.cue and
// returns the descriptor path.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found: %w", FileName, os.ErrNotExist)
		}
		dir = parent
	}
}

// Parse decodes and validates descriptor bytes without touching the
// filesystem.
func Parse(data []byte, root, filename string) (*Workspace, error) {
	res, err := cueutil.ParseAndDecode[Workspace](schema, data, "#Workspace", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	ws := res.Value
	ws.Root = root
	ws.applyDefaults()
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	return ws, nil
}

func (w *Workspace) applyDefaults() {
	if w.OutputDir == "" {
		w.OutputDir = "build"
	}
	for i := range w.Projects {
		p := &w.Projects[i]
		if p.SourceSet == "" {
			p.SourceSet = string(p.Role.SourceSet())
		}
		if len(p.SourceSets) == 0 {
			p.SourceSets = []string{string(types.SourceSetMain), string(types.SourceSetTest)}
		}
		if p.OutputDir == "" {
			p.OutputDir = w.OutputDir
		}
	}
}

// Validate checks cross-project rules: unique names, each role on at most
// one project, no capability listed twice and a declared source set.
func (w *Workspace) Validate() error {
	names := make(map[string]bool, len(w.Projects))
	roles := make(map[Role]string)
	for _, p := range w.Projects {
		name := types.ProjectName(p.Name)
		if names[p.Name] {
			return &subproject.ConfigError{Project: name, Err: ErrDuplicateProject}
		}
		names[p.Name] = true

		if p.Role != "" {
			if owner, taken := roles[p.Role]; taken {
				return &subproject.ConfigError{
					Project: name,
					Err:     fmt.Errorf("%w: %s is already applied to project %s", ErrRoleTaken, p.Role, owner),
				}
			}
			roles[p.Role] = p.Name
		}

		if _, err := p.capabilities(); err != nil {
			return err
		}
		if !slices.Contains(p.SourceSets, p.SourceSet) {
			return &subproject.ConfigError{
				Project: name,
				Err:     fmt.Errorf("unknown source set %q (declared: %s)", p.SourceSet, strings.Join(p.SourceSets, ", ")),
			}
		}
	}
	return nil
}

// CheckDirs verifies that every project directory exists.
func (w *Workspace) CheckDirs() error {
	for _, p := range w.Projects {
		info, err := os.Stat(w.ProjectDir(p))
		if err != nil || !info.IsDir() {
			return &subproject.ConfigError{
				Project: types.ProjectName(p.Name),
				Err:     fmt.Errorf("%w: %s", ErrMissingProjectDir, w.ProjectDir(p)),
			}
		}
	}
	return nil
}

// ProjectDir returns the absolute directory of p.
func (w *Workspace) ProjectDir(p Project) string {
	if filepath.IsAbs(p.Dir) {
		return filepath.Clean(p.Dir)
	}
	return filepath.Join(w.Root, filepath.FromSlash(p.Dir))
}

// Project returns the project called name.
func (w *Workspace) Project(name string) (Project, bool) {
	for _, p := range w.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// ByRole returns the project holding role.
func (w *Workspace) ByRole(r Role) (Project, bool) {
	for _, p := range w.Projects {
		if p.Role == r {
			return p, true
		}
	}
	return Project{}, false
}

// capabilities merges the role's capability with the explicit list. The
// explicit list may not name a capability twice.
func (p Project) capabilities() ([]subproject.Capability, error) {
	var caps []subproject.Capability
	seen := make(map[subproject.Capability]bool)
	for _, name := range p.Capabilities {
		c, err := subproject.ParseCapability(name)
		if err != nil {
			return nil, &subproject.ConfigError{Project: types.ProjectName(p.Name), Err: err}
		}
		if seen[c] {
			return nil, &subproject.ConfigError{
				Project: types.ProjectName(p.Name),
				Err:     fmt.Errorf("%w: %s", subproject.ErrDuplicateCapability, c),
			}
		}
		seen[c] = true
		caps = append(caps, c)
	}
	if c, ok := p.Role.Capability(); ok && !seen[c] {
		caps = append([]subproject.Capability{c}, caps...)
	}
	return caps, nil
}
