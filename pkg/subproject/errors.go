// SPDX-License-Identifier: MPL-2.0

package subproject

import (
	"errors"
	"fmt"

	"github.com/genlayout/genlayout/pkg/types"
)

var (
	// ErrDuplicateCapability is returned when a capability is requested more
	// than once for the same project.
	ErrDuplicateCapability = errors.New("capability requested twice")

	// ErrUnknownCapability is returned for capability values or names
	// outside the known set.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrNotApplicable is returned by As when the project does not carry the
	// requested capability.
	ErrNotApplicable = errors.New("capability not applicable")

	// ErrFrozen is returned when a frozen configuration is modified.
	ErrFrozen = errors.New("configuration is frozen")
)

// ConfigError is a configuration-time fault. It always names the project.
type ConfigError struct {
	Project types.ProjectName
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("project %q: %v", e.Project, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(project types.ProjectName, format string, args ...any) error {
	return &ConfigError{Project: project, Err: fmt.Errorf(format, args...)}
}
