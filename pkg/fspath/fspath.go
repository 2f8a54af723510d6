// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, plus the forward-slash relative
// path forms written into generator arguments and IDE settings.
package fspath

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/genlayout/genlayout/pkg/types"
)

// Join wraps filepath.Join, accepting and returning types.FilesystemPath.
func Join(elem ...types.FilesystemPath) types.FilesystemPath {
	strs := make([]string, len(elem))
	for i, e := range elem {
		strs[i] = string(e)
	}
	return types.FilesystemPath(filepath.Join(strs...))
}

// JoinStr joins a typed base path with literal segments such as "src-gen"
// or names returned by os.ReadDir.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Base wraps filepath.Base for FilesystemPath.
func Base(p types.FilesystemPath) string {
	return filepath.Base(string(p))
}

// Abs wraps filepath.Abs for FilesystemPath.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// FromSlash converts forward slashes to the OS-specific separator.
func FromSlash(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.FromSlash(string(p)))
}

// IsAbs wraps filepath.IsAbs for FilesystemPath.
func IsAbs(p types.FilesystemPath) bool {
	return filepath.IsAbs(string(p))
}

// Rel wraps filepath.Rel for FilesystemPath.
func Rel(base, target types.FilesystemPath) (types.FilesystemPath, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", fmt.Errorf("relativizing %s against %s: %w", target, base, err)
	}
	return types.FilesystemPath(rel), nil
}

// RelSlash returns target relative to root as forward-slash segments, each
// followed by "/". "/proj" and "/proj/build/pde" give "build/pde/"; equal
// paths give "".
func RelSlash(root, target types.FilesystemPath) (string, error) {
	segs, err := relSegments(root, target)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s)
		sb.WriteByte('/')
	}
	return sb.String(), nil
}

// RelSlashJoined is RelSlash without the trailing separator:
// "META-INF/MANIFEST.MF" rather than "META-INF/MANIFEST.MF/".
func RelSlashJoined(root, target types.FilesystemPath) (string, error) {
	segs, err := relSegments(root, target)
	if err != nil {
		return "", err
	}
	return strings.Join(segs, "/"), nil
}

func relSegments(root, target types.FilesystemPath) ([]string, error) {
	rel, err := Rel(Clean(root), Clean(target))
	if err != nil {
		return nil, err
	}
	if rel == "." {
		return nil, nil
	}
	return strings.Split(filepath.ToSlash(string(rel)), "/"), nil
}
