// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	stderrors "errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError is a document that failed to compile, unify or decode.
// Lines hold one "<path>: <message>" entry per CUE error.
type ValidationError struct {
	Filename string
	Lines    []string
}

func (e *ValidationError) Error() string {
	if len(e.Lines) == 1 {
		return e.Filename + ": " + e.Lines[0]
	}
	return e.Filename + ": validation failed:\n  " + strings.Join(e.Lines, "\n  ")
}

// IsValidationError reports whether err contains a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// FormatError rewrites a CUE error as "<file>: <path>: <message>", one line
// per underlying error. Errors that did not come from CUE are wrapped with
// the file name.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}
	var ce errors.Error
	if !stderrors.As(err, &ce) {
		return fmt.Errorf("%s: %w", filename, err)
	}
	cueErrs := errors.Errors(err)

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		path := formatPath(errors.Path(e))
		msg := e.Error()
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		if path != "" {
			lines = append(lines, path+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}
	return &ValidationError{Filename: filename, Lines: lines}
}

// formatPath turns ["projects", "0", "role"] into "projects[0].role".
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
