// SPDX-License-Identifier: MPL-2.0

package subproject

import (
	"fmt"
	"sync"

	"github.com/genlayout/genlayout/pkg/lazy"
	"github.com/genlayout/genlayout/pkg/types"
)

// Config is the base configuration of one generated sub-project. Every
// path is a deferred cell: it may be set explicitly during configuration
// and is otherwise filled in by layout resolution. Once read, a cell is
// fixed.
type Config struct {
	name      types.ProjectName
	root      types.FilesystemPath
	sourceSet types.SourceSetName

	OutputRoot   *PathCell
	Src          *PathCell
	SrcGen       *PathCell
	ResourcesGen *PathCell
	MetaInf      *PathCell
	// Icons is optional and never defaulted.
	Icons *PathCell

	mu     sync.RWMutex
	facets map[Capability]Facet
	frozen bool
}

// New creates a configuration for the project rooted at root, generating
// into the given source set. Requesting the same capability twice is a
// ConfigError. Requesting CapRuntime attaches CapBundle as well.
func New(name types.ProjectName, root types.FilesystemPath, sourceSet types.SourceSetName, caps ...Capability) (*Config, error) {
	if err := name.Validate(); err != nil {
		return nil, &ConfigError{Project: name, Err: err}
	}
	if err := root.Validate(); err != nil {
		return nil, &ConfigError{Project: name, Err: err}
	}
	if sourceSet == "" {
		sourceSet = types.SourceSetMain
	}
	if err := sourceSet.Validate(); err != nil {
		return nil, &ConfigError{Project: name, Err: err}
	}

	c := &Config{
		name:         name,
		root:         root,
		sourceSet:    sourceSet,
		OutputRoot:   lazy.New[types.FilesystemPath]("outputRoot"),
		Src:          lazy.New[types.FilesystemPath]("src"),
		SrcGen:       lazy.New[types.FilesystemPath]("srcGen"),
		ResourcesGen: lazy.New[types.FilesystemPath]("resourcesGen"),
		MetaInf:      lazy.New[types.FilesystemPath]("metaInf"),
		Icons:        lazy.New[types.FilesystemPath]("icons"),
		facets:       make(map[Capability]Facet),
	}

	requested := make(map[Capability]bool, len(caps))
	for _, cp := range caps {
		if err := cp.Validate(); err != nil {
			return nil, &ConfigError{Project: name, Err: err}
		}
		if requested[cp] {
			return nil, configErr(name, "%w: %s", ErrDuplicateCapability, cp)
		}
		requested[cp] = true
		c.attach(cp)
	}
	return c, nil
}

func (c *Config) attach(cp Capability) {
	if _, ok := c.facets[cp]; ok {
		return
	}
	c.facets[cp] = newFacet(cp)
	for _, implied := range cp.implies() {
		c.attach(implied)
	}
}

// Name returns the project name.
func (c *Config) Name() types.ProjectName { return c.name }

// Root returns the project directory.
func (c *Config) Root() types.FilesystemPath { return c.root }

// SourceSet returns the source set the generator writes into.
func (c *Config) SourceSet() types.SourceSetName { return c.sourceSet }

// Has reports whether the configuration carries capability cp.
func (c *Config) Has(cp Capability) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.facets[cp]
	return ok
}

// Capabilities returns the attached capabilities in resolution order.
func (c *Config) Capabilities() []Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Capability, 0, len(c.facets))
	for _, cp := range AllCapabilities() {
		if _, ok := c.facets[cp]; ok {
			out = append(out, cp)
		}
	}
	return out
}

// Facet returns the facet for cp, or ErrNotApplicable wrapped in a
// ConfigError.
func (c *Config) Facet(cp Capability) (Facet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.facets[cp]
	if !ok {
		return nil, configErr(c.name, "%w: %s", ErrNotApplicable, cp)
	}
	return f, nil
}

// Add attaches a capability after construction. It fails when the
// capability is already present or the configuration is frozen.
func (c *Config) Add(cp Capability) error {
	if err := cp.Validate(); err != nil {
		return &ConfigError{Project: c.name, Err: err}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return configErr(c.name, "%w", ErrFrozen)
	}
	if _, ok := c.facets[cp]; ok {
		return configErr(c.name, "%w: %s", ErrDuplicateCapability, cp)
	}
	c.attach(cp)
	return nil
}

// Cells returns the base cells followed by each facet's cells.
func (c *Config) Cells() []*PathCell {
	cells := []*PathCell{c.OutputRoot, c.Src, c.SrcGen, c.ResourcesGen, c.MetaInf, c.Icons}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cp := range AllCapabilities() {
		if f, ok := c.facets[cp]; ok {
			cells = append(cells, f.Cells()...)
		}
	}
	return cells
}

// Freeze makes every cell read-only. Values already installed stay
// deferred; they are still computed on first read.
func (c *Config) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
	for _, cell := range c.Cells() {
		cell.Finalize()
	}
}

// Frozen reports whether Freeze was called.
func (c *Config) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// String returns a short description for logs.
func (c *Config) String() string {
	caps := c.Capabilities()
	names := make([]string, 0, len(caps))
	for _, cp := range caps {
		names = append(names, cp.String())
	}
	return fmt.Sprintf("%s[%s]%v", c.name, c.sourceSet, names)
}

// Has reports whether cfg carries capability cp. A nil cfg has none.
func Has(cfg *Config, cp Capability) bool {
	return cfg != nil && cfg.Has(cp)
}

// As returns the facet for cp or an error matching ErrNotApplicable.
func As(cfg *Config, cp Capability) (Facet, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotApplicable, cp)
	}
	return cfg.Facet(cp)
}

// BundleOf returns the bundle facet of cfg.
func BundleOf(cfg *Config) (*BundleFacet, error) {
	return asType[*BundleFacet](cfg, CapBundle)
}

// RuntimeOf returns the runtime facet of cfg.
func RuntimeOf(cfg *Config) (*RuntimeFacet, error) {
	return asType[*RuntimeFacet](cfg, CapRuntime)
}

// WebOf returns the web facet of cfg.
func WebOf(cfg *Config) (*WebFacet, error) {
	return asType[*WebFacet](cfg, CapWeb)
}

func asType[F Facet](cfg *Config, cp Capability) (F, error) {
	var zero F
	f, err := As(cfg, cp)
	if err != nil {
		return zero, err
	}
	typed, ok := f.(F)
	if !ok {
		return zero, fmt.Errorf("%w: %s has facet %T", ErrNotApplicable, cp, f)
	}
	return typed, nil
}
