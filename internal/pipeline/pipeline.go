// SPDX-License-Identifier: MPL-2.0

// Package pipeline wires a workspace into build operations: generation
// with its reclassification post-step, manifest merging, jar packaging and
// PDE configuration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/genlayout/genlayout/internal/buildgraph"
	"github.com/genlayout/genlayout/internal/generate"
	"github.com/genlayout/genlayout/pkg/artifact"
	"github.com/genlayout/genlayout/pkg/fspath"
	"github.com/genlayout/genlayout/pkg/layout"
	"github.com/genlayout/genlayout/pkg/manifest"
	"github.com/genlayout/genlayout/pkg/pde"
	"github.com/genlayout/genlayout/pkg/reclassify"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
	"github.com/genlayout/genlayout/pkg/workspace"
)

// Operation names.
const (
	OpGenerate = "generate"
	OpBuild    = "build"
	OpEclipse  = "eclipse"

	// PDESourceSet is the extra resource source set holding the PDE directory.
	PDESourceSet types.SourceSetName = "pde"

	// LibsDir is the jar directory under a project's output root.
	LibsDir = "libs"
	// DefaultStateDir is the up-to-date record directory under the
	// workspace root.
	DefaultStateDir = ".genlayout/state"
)

// ErrUnknownProject is returned for a project name the workspace lacks.
var ErrUnknownProject = errors.New("unknown project")

// MergeManifestOp names the manifest merge of project.
func MergeManifestOp(project string) string { return project + ":mergeManifest" }

// JarOp names the packaging of project.
func JarOp(project string) string { return project + ":jar" }

// ConfigurePDEOp names the PDE configuration of project.
func ConfigurePDEOp(project string) string { return project + ":configurePde" }

type (
	// Options configures a Pipeline. Only Workspace is required.
	Options struct {
		Workspace *workspace.Workspace
		// Generator defaults to a ShellGenerator running the workspace's
		// generator script. Without either, generation only reclassifies.
		Generator generate.Generator
		// BuildID keys the manifest merger; a random UUID by default.
		BuildID string
		// StateDir defaults to DefaultStateDir under the workspace root.
		// Set NoState to run every operation each time.
		StateDir string
		NoState  bool
		// Parallelism bounds concurrent operations; below one means the
		// number of CPUs.
		Parallelism int
		// SourceExtensions overrides the workspace's source extensions.
		SourceExtensions []string
		Policy           manifest.MergePolicy
		Logger           *log.Logger
		Stdout           io.Writer
		Stderr           io.Writer
	}

	// Project is a configured sub-project with its resolved paths.
	Project struct {
		Spec       workspace.Project
		Config     *subproject.Config
		SourceSets *layout.SourceSets
		Paths      layout.Paths
		Jar        *artifact.JarSpec
	}

	// Pipeline holds the projects of one build and the operations over them.
	Pipeline struct {
		opts     Options
		projects []*Project
		graph    *buildgraph.Graph
		merger   *artifact.Merger
		logger   *log.Logger

		mu           sync.Mutex
		reclassified map[string]reclassify.Result
		merges       map[string]artifact.Outcome
		pdeResults   map[string]pde.Result
	}
)

// New configures every project of the workspace, freezes the
// configurations and registers the operations.
func New(opts Options) (*Pipeline, error) {
	if opts.Workspace == nil {
		return nil, errors.New("pipeline needs a workspace")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.BuildID == "" {
		opts.BuildID = uuid.NewString()
	}
	if opts.StateDir == "" {
		opts.StateDir = filepath.Join(opts.Workspace.Root, filepath.FromSlash(DefaultStateDir))
	}
	if opts.SourceExtensions == nil {
		opts.SourceExtensions = opts.Workspace.SourceExtensions
	}
	if g := opts.Workspace.Generator; g != nil {
		if err := generate.ValidatePatterns(g.Inputs); err != nil {
			return nil, fmt.Errorf("workspace generator: %w", err)
		}
		if opts.Generator == nil {
			opts.Generator = &generate.ShellGenerator{Script: g.Script}
		}
	}

	mergerOpts := []artifact.MergerOption{artifact.WithLogger(opts.Logger)}
	if opts.Policy != nil {
		mergerOpts = append(mergerOpts, artifact.WithPolicy(opts.Policy))
	}
	graphOpts := []buildgraph.Option{
		buildgraph.WithLogger(opts.Logger),
		buildgraph.WithParallelism(opts.Parallelism),
	}
	if !opts.NoState {
		graphOpts = append(graphOpts, buildgraph.WithStateDir(opts.StateDir))
	}

	p := &Pipeline{
		opts:         opts,
		graph:        buildgraph.New(graphOpts...),
		merger:       artifact.NewMerger(opts.BuildID, mergerOpts...),
		logger:       opts.Logger,
		reclassified: make(map[string]reclassify.Result),
		merges:       make(map[string]artifact.Outcome),
		pdeResults:   make(map[string]pde.Result),
	}
	if err := p.configure(); err != nil {
		return nil, err
	}
	if err := p.register(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) configure() error {
	configured, err := p.opts.Workspace.Configure()
	if err != nil {
		return err
	}
	for _, c := range configured {
		c.Config.Freeze()
		paths, err := layout.Snapshot(c.Config)
		if err != nil {
			return err
		}
		proj := &Project{
			Spec:       c.Project,
			Config:     c.Config,
			SourceSets: c.SourceSets,
			Paths:      paths,
		}
		jarPath := fspath.JoinStr(types.FilesystemPath(paths.OutputRoot), LibsDir, paths.Project+".jar")
		proj.Jar = artifact.NewJarSpec(paths.Project, jarPath)
		if set, ok := c.SourceSets.Get(c.Config.SourceSet()); ok {
			dirs, err := set.ResourceDirs()
			if err != nil {
				return &subproject.ConfigError{Project: c.Config.Name(), Err: err}
			}
			proj.Jar.From(dirs...)
		}
		if paths.Descriptor != "" {
			proj.Jar.SetDescriptor(types.FilesystemPath(paths.Descriptor))
		}
		if c.Project.PDE {
			set := layout.NewSourceSet(PDESourceSet)
			set.AddResourceDir(p.pdeDir(proj))
			c.SourceSets.Add(set)
		}
		p.projects = append(p.projects, proj)
	}
	return nil
}

func (p *Pipeline) pdeDir(proj *Project) types.FilesystemPath {
	return fspath.JoinStr(types.FilesystemPath(proj.Paths.Root), filepath.FromSlash(pde.DefaultDir))
}

func (p *Pipeline) register() error {
	gen := buildgraph.Operation{
		Name:   OpGenerate,
		Action: p.generate,
		DoLast: []buildgraph.Action{p.reclassifyAction},
		Inputs: []buildgraph.FileSet{{
			Paths:       []string{filepath.Join(p.opts.Workspace.Root, workspace.FileName)},
			Sensitivity: buildgraph.ContentOnly,
		}},
	}
	if g := p.opts.Workspace.Generator; g != nil && len(g.Inputs) > 0 {
		gen.Inputs = append(gen.Inputs, buildgraph.FileSet{
			Root:        p.opts.Workspace.Root,
			Patterns:    g.Inputs,
			Sensitivity: buildgraph.ContentOnly,
		})
	}
	for _, proj := range p.projects {
		gen.Outputs = append(gen.Outputs, proj.Paths.SrcGen, proj.Paths.ResourcesGen)
	}
	if err := p.graph.Register(gen); err != nil {
		return err
	}

	var jars, pdeOps []string
	for _, proj := range p.projects {
		name := proj.Paths.Project
		jarDeps := []string{OpGenerate}
		if p.mergesManifest(proj) {
			if err := p.graph.Register(buildgraph.Operation{
				Name:      MergeManifestOp(name),
				DependsOn: []string{OpGenerate},
				Action:    p.mergeAction(proj),
			}); err != nil {
				return err
			}
			jarDeps = []string{MergeManifestOp(name)}
		}

		jar := buildgraph.Operation{
			Name:      JarOp(name),
			DependsOn: jarDeps,
			Outputs:   []string{proj.Jar.Path().String()},
			Action: func(ctx context.Context) error {
				return artifact.Package(ctx, proj.Jar)
			},
		}
		for _, dir := range proj.Jar.Dirs() {
			jar.Inputs = append(jar.Inputs, buildgraph.FileSet{Paths: []string{dir.String()}, Sensitivity: buildgraph.FullPath})
		}
		if err := p.graph.Register(jar); err != nil {
			return err
		}
		jars = append(jars, jar.Name)

		if proj.Spec.PDE {
			if err := p.graph.Register(buildgraph.Operation{
				Name:      ConfigurePDEOp(name),
				DependsOn: []string{JarOp(name)},
				Inputs:    []buildgraph.FileSet{{Paths: []string{proj.Jar.Path().String()}, Sensitivity: buildgraph.ContentOnly}},
				Outputs: []string{
					p.pdeDir(proj).String(),
					filepath.Join(proj.Paths.Root, filepath.FromSlash(pde.SettingsFile)),
				},
				Action: p.pdeAction(proj),
			}); err != nil {
				return err
			}
			pdeOps = append(pdeOps, ConfigurePDEOp(name))
		}
	}

	noop := func(context.Context) error { return nil }
	if len(pdeOps) > 0 {
		if err := p.graph.Register(buildgraph.Operation{Name: OpEclipse, DependsOn: pdeOps, Action: noop}); err != nil {
			return err
		}
	}
	return p.graph.Register(buildgraph.Operation{Name: OpBuild, DependsOn: jars, Action: noop})
}

// mergesManifest reports whether proj takes part in manifest merging:
// bundles on the main source set only.
func (p *Pipeline) mergesManifest(proj *Project) bool {
	return subproject.Has(proj.Config, subproject.CapBundle) && proj.Config.SourceSet() == types.SourceSetMain
}

func (p *Pipeline) generate(ctx context.Context) error {
	if p.opts.Generator == nil {
		p.logger.Warn("no generator configured; reclassifying existing output only")
		return nil
	}
	req := generate.NewRequest(p.generatorDir())
	for _, proj := range p.projects {
		req.Projects = append(req.Projects, generate.Project{Role: string(proj.Spec.Role), Paths: proj.Paths})
		req.OutputDirectories = append(req.OutputDirectories, proj.Paths.SrcGen)
	}
	if g := p.opts.Workspace.Generator; g != nil {
		req.Env = g.Env
	}
	req.Stdout, req.Stderr = p.opts.Stdout, p.opts.Stderr
	return p.opts.Generator.Generate(ctx, req)
}

func (p *Pipeline) generatorDir() string {
	root := p.opts.Workspace.Root
	g := p.opts.Workspace.Generator
	if g == nil || g.Dir == "" {
		return root
	}
	if filepath.IsAbs(g.Dir) {
		return g.Dir
	}
	return filepath.Join(root, filepath.FromSlash(g.Dir))
}

func (p *Pipeline) reclassifyAction(ctx context.Context) error {
	_, err := p.Reclassify(ctx)
	return err
}

// Reclassify moves non-source files out of every project's srcGen and
// prunes emptied directories. It is the post-step of generation and also
// runs on its own.
func (p *Pipeline) Reclassify(ctx context.Context) (map[string]reclassify.Result, error) {
	opts := []reclassify.Option{reclassify.WithLogger(p.logger)}
	if len(p.opts.SourceExtensions) > 0 {
		opts = append(opts, reclassify.WithExtensions(p.opts.SourceExtensions...))
	}
	out := make(map[string]reclassify.Result, len(p.projects))
	for _, proj := range p.projects {
		res, err := reclassify.Run(ctx,
			types.FilesystemPath(proj.Paths.SrcGen),
			types.FilesystemPath(proj.Paths.ResourcesGen),
			opts...)
		if err != nil {
			return out, fmt.Errorf("project %s: %w", proj.Paths.Project, err)
		}
		out[proj.Paths.Project] = res
		p.mu.Lock()
		p.reclassified[proj.Paths.Project] = res
		p.mu.Unlock()
	}
	return out, nil
}

func (p *Pipeline) mergeAction(proj *Project) buildgraph.Action {
	return func(ctx context.Context) error {
		inputs := []types.FilesystemPath{types.FilesystemPath(proj.Paths.Manifest)}
		outcome, err := p.merger.Merge(ctx, proj.Jar, inputs)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.merges[proj.Paths.Project] = outcome
		p.mu.Unlock()
		p.logger.Info("manifest merge", "project", proj.Paths.Project, "outcome", outcome)
		return nil
	}
}

func (p *Pipeline) pdeAction(proj *Project) buildgraph.Action {
	return func(context.Context) error {
		res, err := pde.Configure(pde.Options{
			ProjectDir: types.FilesystemPath(proj.Paths.Root),
			Jar:        proj.Jar.Path(),
			Dir:        p.pdeDir(proj),
			Logger:     p.logger,
		})
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.pdeResults[proj.Paths.Project] = res
		p.mu.Unlock()
		return nil
	}
}

// Run executes targets and their dependencies; no targets means every
// operation.
func (p *Pipeline) Run(ctx context.Context, targets ...string) (buildgraph.Report, error) {
	return p.graph.Run(ctx, targets...)
}

// DryRun reports what Run would visit without running anything.
func (p *Pipeline) DryRun(targets ...string) (buildgraph.Report, error) {
	return p.graph.DryRun(targets...)
}

// Graph returns the registered operations.
func (p *Pipeline) Graph() *buildgraph.Graph { return p.graph }

// BuildID returns the identifier keying this build's manifest merges.
func (p *Pipeline) BuildID() string { return p.merger.BuildID() }

// Projects returns the configured projects in workspace order.
func (p *Pipeline) Projects() []*Project { return append([]*Project(nil), p.projects...) }

// Project returns the project called name.
func (p *Pipeline) Project(name string) (*Project, error) {
	for _, proj := range p.projects {
		if proj.Paths.Project == name {
			return proj, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProject, name)
}

// Reclassified returns the last reclassification result of project.
func (p *Pipeline) Reclassified(project string) (reclassify.Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.reclassified[project]
	return r, ok
}

// MergeOutcome returns the manifest merge outcome of project in this build.
func (p *Pipeline) MergeOutcome(project string) (artifact.Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.merges[project]
	return o, ok
}

// PDEResult returns what the PDE configuration of project wrote.
func (p *Pipeline) PDEResult(project string) (pde.Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.pdeResults[project]
	return r, ok
}
