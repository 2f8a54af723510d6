// SPDX-License-Identifier: MPL-2.0

package layout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

var (
	// ErrUnknownSourceSet is returned when a project refers to a source set
	// that was not declared.
	ErrUnknownSourceSet = errors.New("unknown source set")

	// ErrNoSourceDir is returned when a source directory is needed but the
	// source set has none.
	ErrNoSourceDir = errors.New("source set has no source directory")
)

type (
	pathSource func() (types.FilesystemPath, error)

	// SourceSet collects the compilable and resource directories of one
	// source set. Directories are registered as deferred sources and are
	// evaluated and deduplicated when read.
	SourceSet struct {
		name types.SourceSetName

		mu         sync.Mutex
		sources    []pathSource
		resources  []pathSource
		registered map[*subproject.Config]bool
	}

	// SourceSets is an ordered set of named source sets.
	SourceSets struct {
		mu    sync.Mutex
		order []types.SourceSetName
		sets  map[types.SourceSetName]*SourceSet
	}
)

// NewSourceSet returns a source set with no directories.
func NewSourceSet(name types.SourceSetName) *SourceSet {
	return &SourceSet{name: name, registered: make(map[*subproject.Config]bool)}
}

// Name returns the source set name.
func (s *SourceSet) Name() types.SourceSetName { return s.name }

// AddSourceDir registers a fixed compilable directory.
func (s *SourceSet) AddSourceDir(dir types.FilesystemPath) {
	s.addSource(fixed(dir))
}

// AddResourceDir registers a fixed resource directory.
func (s *SourceSet) AddResourceDir(dir types.FilesystemPath) {
	s.addResource(fixed(dir))
}

func (s *SourceSet) addSource(src pathSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, src)
}

func (s *SourceSet) addResource(src pathSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append(s.resources, src)
}

// SourceDirs evaluates the compilable directories, dropping duplicates and
// keeping first-registration order.
func (s *SourceSet) SourceDirs() ([]types.FilesystemPath, error) {
	s.mu.Lock()
	srcs := append([]pathSource(nil), s.sources...)
	s.mu.Unlock()
	return evaluate(srcs)
}

// ResourceDirs evaluates the resource directories, dropping duplicates and
// keeping first-registration order.
func (s *SourceSet) ResourceDirs() ([]types.FilesystemPath, error) {
	s.mu.Lock()
	srcs := append([]pathSource(nil), s.resources...)
	s.mu.Unlock()
	return evaluate(srcs)
}

func (s *SourceSet) firstSourceDir() (types.FilesystemPath, error) {
	s.mu.Lock()
	var first pathSource
	if len(s.sources) > 0 {
		first = s.sources[0]
	}
	s.mu.Unlock()
	if first == nil {
		return "", fmt.Errorf("%w: %s", ErrNoSourceDir, s.name)
	}
	return first()
}

// markRegistered reports whether cfg was seen before and records it.
func (s *SourceSet) markRegistered(cfg *subproject.Config) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registered[cfg] {
		return true
	}
	s.registered[cfg] = true
	return false
}

func evaluate(srcs []pathSource) ([]types.FilesystemPath, error) {
	out := make([]types.FilesystemPath, 0, len(srcs))
	seen := make(map[types.FilesystemPath]bool, len(srcs))
	for _, src := range srcs {
		p, err := src()
		if err != nil {
			return nil, err
		}
		p = fspath.Clean(p)
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

func fixed(p types.FilesystemPath) pathSource {
	return func() (types.FilesystemPath, error) { return p, nil }
}

func parentOf(cell *subproject.PathCell) pathSource {
	return func() (types.FilesystemPath, error) {
		p, err := cell.Get()
		if err != nil {
			return "", err
		}
		return fspath.Dir(p), nil
	}
}

func cellSource(cell *subproject.PathCell) pathSource {
	return cell.Get
}

// NewSourceSets returns source sets for names using the conventional
// directories under projectRoot: src/<name>/java and src/<name>/resources.
func NewSourceSets(projectRoot types.FilesystemPath, names ...types.SourceSetName) *SourceSets {
	ss := &SourceSets{sets: make(map[types.SourceSetName]*SourceSet)}
	for _, n := range names {
		set := NewSourceSet(n)
		set.AddSourceDir(fspath.JoinStr(projectRoot, "src", string(n), JavaDir))
		set.AddResourceDir(fspath.JoinStr(projectRoot, "src", string(n), ResourcesDir))
		ss.Add(set)
	}
	return ss
}

// Add registers set, replacing any set of the same name.
func (ss *SourceSets) Add(set *SourceSet) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.sets == nil {
		ss.sets = make(map[types.SourceSetName]*SourceSet)
	}
	if _, ok := ss.sets[set.name]; !ok {
		ss.order = append(ss.order, set.name)
	}
	ss.sets[set.name] = set
}

// Get returns the named source set.
func (ss *SourceSets) Get(name types.SourceSetName) (*SourceSet, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.sets[name]
	return s, ok
}

// Names returns the source set names in declaration order.
func (ss *SourceSets) Names() []types.SourceSetName {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]types.SourceSetName(nil), ss.order...)
}
