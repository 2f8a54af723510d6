// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/genlayout/genlayout/internal/dag"
	"github.com/genlayout/genlayout/internal/generate"
	"github.com/genlayout/genlayout/internal/issue"
	"github.com/genlayout/genlayout/pkg/manifest"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
		code types.ExitCode
	}{
		{"config fault", &subproject.ConfigError{Project: "dsl", Err: subproject.ErrDuplicateCapability}, issue.ConfigurationFaultId, types.ExitConfigFault},
		{"cycle", fmt.Errorf("plan: %w", &dag.CycleError{Nodes: []string{"a", "b"}}), issue.DependencyCycleId, types.ExitFailure},
		{"generator", fmt.Errorf("generate: %w", &generate.ExitError{Code: 3}), issue.GeneratorFailedId, types.ExitFailure},
		{"manifest", fmt.Errorf("merge: %w", manifest.ErrMalformed), issue.MalformedManifestId, types.ExitFailure},
		{"permission", fmt.Errorf("write: %w", fs.ErrPermission), issue.PermissionDeniedId, types.ExitFailure},
		{"unknown node", dag.ErrUnknownNode, issue.UnknownProjectId, types.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := classify(tt.err, "op", "res")
			if !errors.Is(err, tt.err) {
				t.Errorf("classified error should wrap the cause")
			}
			if got := issue.Of(err); got != issue.Get(tt.want) {
				t.Errorf("issue = %v, want %d", got, tt.want)
			}
			if got := exitCodeOf(err); got != tt.code {
				t.Errorf("exitCodeOf() = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestClassify_Passthrough(t *testing.T) {
	t.Parallel()

	if classify(nil, "op", "res") != nil {
		t.Error("nil stays nil")
	}
	ae := issue.NewErrorContext().WithOperation("first").WithIssue(issue.WorkspaceNotFoundId).BuildError()
	if got := classify(ae, "second", "res"); got != ae {
		t.Errorf("actionable errors should pass through, got %v", got)
	}
	plain := errors.New("plain")
	if issue.Of(classify(plain, "op", "res")) != nil {
		t.Error("unknown errors get no issue")
	}
	if exitCodeOf(&ExitError{Code: 7}) != 7 {
		t.Error("ExitError code should be used as is")
	}
}
