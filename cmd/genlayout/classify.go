// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"io/fs"

	"github.com/genlayout/genlayout/internal/dag"
	"github.com/genlayout/genlayout/internal/generate"
	"github.com/genlayout/genlayout/internal/issue"
	"github.com/genlayout/genlayout/internal/pipeline"
	"github.com/genlayout/genlayout/pkg/cueutil"
	"github.com/genlayout/genlayout/pkg/manifest"
	"github.com/genlayout/genlayout/pkg/settings"
	"github.com/genlayout/genlayout/pkg/subproject"
	"github.com/genlayout/genlayout/pkg/types"
)

// classify attaches an issue and suggestions to err according to its
// category. Errors that already are actionable pass through.
func classify(err error, operation, resource string) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().WithOperation(operation).WithResource(resource).Wrap(err)
	var (
		cfgErr   *subproject.ConfigError
		cycleErr *dag.CycleError
		exitErr  *generate.ExitError
	)
	switch {
	case errors.As(err, &cfgErr):
		ec.WithIssue(issue.ConfigurationFaultId).
			WithSuggestion("Fix project " + string(cfgErr.Project) + " in the workspace descriptor")
	case cueutil.IsValidationError(err):
		ec.WithIssue(issue.WorkspaceInvalidId).
			WithSuggestion("Compare the descriptor with the one written by 'genlayout init'")
	case errors.As(err, &cycleErr):
		ec.WithIssue(issue.DependencyCycleId)
	case errors.As(err, &exitErr):
		ec.WithIssue(issue.GeneratorFailedId).
			WithSuggestion("Re-run with --verbose to see the generator environment")
	case errors.Is(err, manifest.ErrMalformed):
		ec.WithIssue(issue.MalformedManifestId)
	case errors.Is(err, settings.ErrMalformed):
		ec.WithIssue(issue.MalformedSettingsId).
			WithSuggestion("Delete the file to let it be written again")
	case errors.Is(err, pipeline.ErrUnknownProject), errors.Is(err, dag.ErrUnknownNode):
		ec.WithIssue(issue.UnknownProjectId).
			WithSuggestion("Run 'genlayout build --dry-run' to list the operations")
	case errors.Is(err, fs.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId)
	}
	return ec.BuildError()
}

// exitCodeOf maps an error to the process exit status: configuration
// faults exit with 2, every other failure with 1.
func exitCodeOf(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch issue.Of(err) {
	case issue.Get(issue.ConfigurationFaultId), issue.Get(issue.WorkspaceInvalidId), issue.Get(issue.ConfigLoadFailedId):
		return types.ExitConfigFault
	}
	return types.ExitFailure
}
