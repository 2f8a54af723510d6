// SPDX-License-Identifier: MPL-2.0

// Package generate defines the grammar generator collaborator. A generator
// is opaque: it receives the resolved layout of every sub-project and
// writes files under their generated-source directories.
package generate

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/genlayout/genlayout/pkg/layout"
)

type (
	// Generator produces the generated tree for a request.
	Generator interface {
		Generate(ctx context.Context, req Request) error
	}

	// Func adapts a function to Generator.
	Func func(ctx context.Context, req Request) error

	// Project is one sub-project as seen by a generator.
	Project struct {
		// Role is the part the project plays; empty when it has none.
		Role string
		layout.Paths
	}

	// Request is the input of one generation.
	Request struct {
		// OutputDirectories lists the generated-source directories the
		// generator writes to, one per project.
		OutputDirectories []string
		Projects          []Project
		// Dir is the working directory.
		Dir string
		// Env holds extra environment variables.
		Env    map[string]string
		Stdout io.Writer
		Stderr io.Writer
	}
)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) error { return f(ctx, req) }

// NewRequest builds a request over projects, listing their srcGen
// directories as outputs.
func NewRequest(dir string, projects ...Project) Request {
	req := Request{Dir: dir, Projects: projects}
	for _, p := range projects {
		req.OutputDirectories = append(req.OutputDirectories, p.SrcGen)
	}
	return req
}

// EnvSuffix names a project in environment variables: its role when set,
// otherwise its name, upper-cased with every other character than letters
// and digits turned into "_".
func (p Project) EnvSuffix() string {
	s := p.Role
	if s == "" {
		s = p.Project
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, s)
}

// ValidatePatterns checks grammar input globs.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid input pattern %q", p)
		}
	}
	return nil
}

// MatchInput reports whether the slash-separated path rel matches one of
// the grammar input patterns.
func MatchInput(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
