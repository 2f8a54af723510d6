// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// SourceSetMain is the production source set.
	SourceSetMain SourceSetName = "main"
	// SourceSetTest is the test source set.
	SourceSetTest SourceSetName = "test"
)

var (
	// ErrInvalidProjectName is the sentinel error wrapped by InvalidProjectNameError.
	ErrInvalidProjectName = errors.New("invalid project name")
	// ErrInvalidSourceSetName is the sentinel error wrapped by InvalidSourceSetNameError.
	ErrInvalidSourceSetName = errors.New("invalid source set name")

	// projectNamePattern accepts bundle-style symbolic names such as
	// "org.example.dsl.ide" as well as plain directory names.
	projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

	sourceSetNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
)

type (
	// ProjectName identifies a sub-project. It doubles as the bundle symbolic
	// name and as the prefix of the sub-project's build operations.
	ProjectName string

	// InvalidProjectNameError is returned when a ProjectName is malformed.
	InvalidProjectNameError struct {
		Value ProjectName
	}

	// SourceSetName identifies a source set ("main", "test", ...). It is the
	// <sourceSet> segment of every derived src-gen path.
	SourceSetName string

	// InvalidSourceSetNameError is returned when a SourceSetName is malformed.
	InvalidSourceSetNameError struct {
		Value SourceSetName
	}
)

// String returns the string representation of the ProjectName.
func (n ProjectName) String() string { return string(n) }

// Validate returns nil if the name is a usable project identifier.
func (n ProjectName) Validate() error {
	if !projectNamePattern.MatchString(string(n)) {
		return &InvalidProjectNameError{Value: n}
	}
	return nil
}

// Error implements the error interface for InvalidProjectNameError.
func (e *InvalidProjectNameError) Error() string {
	return fmt.Sprintf("invalid project name %q: must start with a letter, digit or underscore and contain only [A-Za-z0-9_.-]", e.Value)
}

// Unwrap returns ErrInvalidProjectName for errors.Is() compatibility.
func (e *InvalidProjectNameError) Unwrap() error { return ErrInvalidProjectName }

// String returns the string representation of the SourceSetName.
func (n SourceSetName) String() string { return string(n) }

// Validate returns nil if the name is a usable source set identifier.
func (n SourceSetName) Validate() error {
	if !sourceSetNamePattern.MatchString(string(n)) {
		return &InvalidSourceSetNameError{Value: n}
	}
	return nil
}

// Error implements the error interface for InvalidSourceSetNameError.
func (e *InvalidSourceSetNameError) Error() string {
	return fmt.Sprintf("invalid source set name %q: must be alphanumeric and start with a letter", e.Value)
}

// Unwrap returns ErrInvalidSourceSetName for errors.Is() compatibility.
func (e *InvalidSourceSetNameError) Unwrap() error { return ErrInvalidSourceSetName }
