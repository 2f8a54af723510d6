// SPDX-License-Identifier: MPL-2.0

package reclassify

import "testing"

func TestExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Foo.java", "java"},
		{"Foo.XTEND", "xtend"},
		{"archive.tar.gz", "gz"},
		{"Makefile", "makefile"},
		{"java", "java"},
		{".java", "java"},
		{"trailing.", ""},
	}
	for _, tt := range tests {
		if got := Extension(tt.name); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		classifier Classifier
		file       string
		want       Classification
	}{
		{"java is source", NewClassifier(), "Lang.java", Source},
		{"xtend upper case is source", NewClassifier(), "Lang.XTEND", Source},
		{"xtextbin is not", NewClassifier(), "Lang.xtextbin", NonSource},
		{"tokens is not", NewClassifier(), "InternalLang.tokens", NonSource},
		{"dotless name equal to extension", NewClassifier(), "java", Source},
		{"dotless other name", NewClassifier(), "README", NonSource},
		{"custom list", NewClassifier(".Kt", " java "), "Main.kt", Source},
		{"custom list drops defaults", NewClassifier("kt"), "Main.xtend", NonSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.classifier.Classify(tt.file); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}
