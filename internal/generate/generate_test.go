// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/genlayout/genlayout/pkg/layout"
)

func TestProjectEnvSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		project Project
		want    string
	}{
		{Project{Role: "eclipse_plugin"}, "ECLIPSE_PLUGIN"},
		{Project{Paths: layout.Paths{Project: "org.example.dsl"}}, "ORG_EXAMPLE_DSL"},
		{Project{Role: "web", Paths: layout.Paths{Project: "x"}}, "WEB"},
	}
	for _, tt := range tests {
		if got := tt.project.EnvSuffix(); got != tt.want {
			t.Errorf("EnvSuffix() = %q, want %q", got, tt.want)
		}
	}
}

func TestEnviron(t *testing.T) {
	t.Parallel()

	req := NewRequest("/w",
		Project{Role: "runtime", Paths: layout.Paths{
			SrcGen:        "/w/a/build/src-gen/main/java",
			ManifestRel:   "MANIFEST.MF",
			DescriptorRel: "build/src-gen/main/resources/plugin.xml",
		}},
		Project{Role: "web", Paths: layout.Paths{SrcGen: "/w/b/gen", Assets: "/w/b/assets"}},
	)
	req.Env = map[string]string{"EXTRA": "1"}

	env := Environ(req)
	for _, want := range []string{
		"EXTRA=1",
		EnvOutputDirs + "=/w/a/build/src-gen/main/java" + string(os.PathListSeparator) + "/w/b/gen",
		"GENLAYOUT_SRC_GEN_RUNTIME=/w/a/build/src-gen/main/java",
		"GENLAYOUT_MANIFEST_RUNTIME=MANIFEST.MF",
		"GENLAYOUT_DESCRIPTOR_RUNTIME=build/src-gen/main/resources/plugin.xml",
		"GENLAYOUT_SRC_GEN_WEB=/w/b/gen",
		"GENLAYOUT_ASSETS_WEB=/w/b/assets",
	} {
		if !slices.Contains(env, want) {
			t.Errorf("Environ() lacks %q", want)
		}
	}
	if slices.ContainsFunc(env, func(s string) bool { return strings.HasPrefix(s, "GENLAYOUT_MODEL_") }) {
		t.Error("empty paths should not be exported")
	}
}

func TestShellGenerator(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcGen := filepath.Join(dir, "dsl", "build", "src-gen", "main", "java")
	req := NewRequest(dir, Project{Role: "runtime", Paths: layout.Paths{SrcGen: srcGen}})
	var out bytes.Buffer
	req.Stdout = &out

	g := &ShellGenerator{Script: `
echo 'class A {}' > "$GENLAYOUT_SRC_GEN_RUNTIME/A.java"
echo 'text' > "$GENLAYOUT_SRC_GEN_RUNTIME/notes.txt"
echo "generated into $GENLAYOUT_OUTPUT_DIRS"
`}
	if err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(srcGen, "A.java"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "class A {}\n" {
		t.Errorf("A.java = %q", data)
	}
	if !strings.Contains(out.String(), srcGen) {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestShellGenerator_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	req := NewRequest(t.TempDir())

	var exitErr *ExitError
	if err := (&ShellGenerator{Script: "exit 3"}).Generate(ctx, req); !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("exit 3 error = %v", err)
	}
	if err := (&ShellGenerator{Script: "if then"}).Validate(); err == nil {
		t.Error("syntax error should fail validation")
	}
	if err := (&ShellGenerator{}).Validate(); err == nil {
		t.Error("empty script should fail validation")
	}
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var got Request
	var g Generator = Func(func(_ context.Context, req Request) error {
		got = req
		return nil
	})
	req := NewRequest("/w", Project{Paths: layout.Paths{SrcGen: "/w/gen"}})
	if err := g.Generate(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got.OutputDirectories, []string{"/w/gen"}) {
		t.Errorf("OutputDirectories = %v", got.OutputDirectories)
	}
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	patterns := []string{"**/*.xtext", "grammars/*.mwe2"}
	if err := ValidatePatterns(patterns); err != nil {
		t.Fatal(err)
	}
	if err := ValidatePatterns([]string{"[a"}); err == nil {
		t.Error("unterminated class should be invalid")
	}
	for rel, want := range map[string]bool{
		"a/b/My.xtext":    true,
		"My.xtext":        true,
		"grammars/x.mwe2": true,
		"other/x.mwe2":    false,
		"src/Main.java":   false,
	} {
		if got := MatchInput(patterns, rel); got != want {
			t.Errorf("MatchInput(%q) = %v, want %v", rel, got, want)
		}
	}
}
