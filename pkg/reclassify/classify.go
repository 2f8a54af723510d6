// SPDX-License-Identifier: MPL-2.0

// Package reclassify moves non-source files out of a generated source tree
// into the matching generated resource tree and prunes the directories left
// empty.
package reclassify

import (
	"strings"
)

// Classification tells source files from everything else.
type Classification uint8

const (
	// Source files stay in the generated source tree.
	Source Classification = iota
	// NonSource files move to the generated resource tree.
	NonSource
)

// DefaultExtensions are the source extensions used when none are given.
var DefaultExtensions = []string{"java", "xtend"}

// String returns "source" or "non-source".
func (c Classification) String() string {
	if c == Source {
		return "source"
	}
	return "non-source"
}

// Classifier decides a file's classification from its extension alone.
type Classifier struct {
	exts map[string]struct{}
}

// NewClassifier returns a classifier for the given extensions, compared
// case-insensitively and with or without a leading dot. With no extensions
// it uses DefaultExtensions.
func NewClassifier(exts ...string) Classifier {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	c := Classifier{exts: make(map[string]struct{}, len(exts))}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			c.exts[e] = struct{}{}
		}
	}
	return c
}

// Classify returns the classification of the file called name.
func (c Classifier) Classify(name string) Classification {
	if _, ok := c.exts[Extension(name)]; ok {
		return Source
	}
	return NonSource
}

// Extension returns the lowercased text after the last dot of name. A name
// without a dot is its own extension.
func Extension(name string) string {
	name = strings.ToLower(name)
	return name[strings.LastIndexByte(name, '.')+1:]
}
