// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// EnvOutputDirs lists every output directory, separated by the OS path
	// list separator.
	EnvOutputDirs = "GENLAYOUT_OUTPUT_DIRS"
	// EnvSrcGenPrefix prefixes the per-project srcGen variable.
	EnvSrcGenPrefix = "GENLAYOUT_SRC_GEN_"
	// EnvResourcesGenPrefix prefixes the per-project resourcesGen variable.
	EnvResourcesGenPrefix = "GENLAYOUT_RESOURCES_GEN_"
	// EnvManifestPrefix prefixes the manifest path relative to META-INF.
	EnvManifestPrefix = "GENLAYOUT_MANIFEST_"
	// EnvDescriptorPrefix prefixes the descriptor path relative to the project root.
	EnvDescriptorPrefix = "GENLAYOUT_DESCRIPTOR_"
	// EnvModelPrefix prefixes the model directory variable.
	EnvModelPrefix = "GENLAYOUT_MODEL_"
	// EnvAssetsPrefix prefixes the assets directory variable.
	EnvAssetsPrefix = "GENLAYOUT_ASSETS_"
)

// ExitError reports a generator script that exited with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("generator exited with status %d", e.Code) }

// ShellGenerator runs a POSIX shell script through the mvdan/sh
// interpreter. The script sees the process environment, the request's Env
// and the GENLAYOUT_* layout variables.
type ShellGenerator struct {
	Script string
}

// Validate parses the script without running it.
func (g *ShellGenerator) Validate() error {
	_, err := g.parse()
	return err
}

func (g *ShellGenerator) parse() (*syntax.File, error) {
	if strings.TrimSpace(g.Script) == "" {
		return nil, errors.New("generator script is empty")
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(g.Script), "generator")
	if err != nil {
		return nil, fmt.Errorf("parsing generator script: %w", err)
	}
	return prog, nil
}

// Generate creates the output directories and runs the script.
func (g *ShellGenerator) Generate(ctx context.Context, req Request) error {
	prog, err := g.parse()
	if err != nil {
		return err
	}
	for _, dir := range req.OutputDirectories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	stdout, stderr := req.Stdout, req.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(Environ(req)...)),
		interp.StdIO(nil, stdout, stderr),
	}
	if req.Dir != "" {
		opts = append(opts, interp.Dir(req.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("creating interpreter: %w", err)
	}
	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Code: int(status)}
		}
		return fmt.Errorf("running generator: %w", err)
	}
	return nil
}

// Environ returns the environment a generator script runs with: the
// process environment, then req.Env, then the layout variables.
func Environ(req Request) []string {
	env := os.Environ()
	for _, k := range slices.Sorted(maps.Keys(req.Env)) {
		env = append(env, k+"="+req.Env[k])
	}
	env = append(env, EnvOutputDirs+"="+strings.Join(req.OutputDirectories, string(os.PathListSeparator)))
	for _, p := range req.Projects {
		suffix := p.EnvSuffix()
		add := func(prefix, value string) {
			if value != "" {
				env = append(env, prefix+suffix+"="+value)
			}
		}
		add(EnvSrcGenPrefix, p.SrcGen)
		add(EnvResourcesGenPrefix, p.ResourcesGen)
		add(EnvManifestPrefix, p.ManifestRel)
		add(EnvDescriptorPrefix, p.DescriptorRel)
		add(EnvModelPrefix, p.Model)
		add(EnvAssetsPrefix, p.Assets)
	}
	return env
}
