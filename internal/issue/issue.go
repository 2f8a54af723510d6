// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog page.
type Id int

const (
	WorkspaceNotFoundId Id = iota + 1
	WorkspaceInvalidId
	ConfigurationFaultId
	ConfigLoadFailedId
	GeneratorFailedId
	DependencyCycleId
	MalformedManifestId
	MalformedSettingsId
	UnknownProjectId
	PermissionDeniedId
)

type (
	// MarkdownMsg is the Markdown body of a page.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is one catalog page.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var render = glamour.Render

// Id returns the page id.
func (i *Issue) Id() Id { return i.id }

// MarkdownMsg returns the page body.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render renders the page with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, l := range i.docLinks {
			sb.WriteString("- <" + string(l) + ">\n")
		}
	}
	return render(sb.String(), stylePath)
}

var issues = map[Id]*Issue{
	WorkspaceNotFoundId: {
		id: WorkspaceNotFoundId,
		mdMsg: `
# No workspace descriptor found

genlayout looks for ` + "`genlayout.cue`" + ` in the current directory and its parents.

## Things you can try
- Create one in the repository root:
~~~
$ genlayout init
~~~
- Or point to it explicitly with ` + "`--workspace path/to/genlayout.cue`" + `.`,
	},
	WorkspaceInvalidId: {
		id: WorkspaceInvalidId,
		mdMsg: `
# The workspace descriptor is invalid

The descriptor did not match the schema. The error names the field path.

## Things you can try
- Check that every project has a ` + "`name`" + ` and a ` + "`dir`" + `.
- Roles are one of runtime, runtime_test, generic_ide, eclipse_plugin, eclipse_plugin_test and web.
- Capabilities are one of bundle, runtime and web.`,
	},
	ConfigurationFaultId: {
		id: ConfigurationFaultId,
		mdMsg: `
# A project is configured inconsistently

Configuration faults are reported before any file is touched.

## Common causes
- A capability listed twice for the same project.
- A role assigned to two projects.
- A source set that the project does not declare in ` + "`source_sets`" + `.
- A project directory that does not exist.`,
	},
	ConfigLoadFailedId: {
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration

## Things you can try
- Show the effective configuration:
~~~
$ genlayout config show
~~~
- Print the location of the configuration file:
~~~
$ genlayout config path
~~~`,
	},
	GeneratorFailedId: {
		id: GeneratorFailedId,
		mdMsg: `
# The generator failed

The generator script of the workspace returned an error. Its output is
shown above this message.

## Things you can try
- Run the script by hand with the ` + "`GENLAYOUT_*`" + ` variables printed by ` + "`genlayout layout`" + `.
- Re-run with ` + "`--verbose`" + ` to see every operation.`,
	},
	DependencyCycleId: {
		id: DependencyCycleId,
		mdMsg: `
# Operations depend on each other in a cycle

No order satisfies every dependency. The error lists the operations involved.`,
	},
	MalformedManifestId: {
		id: MalformedManifestId,
		mdMsg: `
# A generated manifest could not be parsed

Manifests are ` + "`Name: value`" + ` lines; continuation lines start with one space.
The target artifact was left unchanged.`,
	},
	MalformedSettingsId: {
		id: MalformedSettingsId,
		mdMsg: `
# A settings file could not be parsed

The file is not a valid properties stream. It is not repaired automatically;
fix or delete it and run the command again.`,
	},
	UnknownProjectId: {
		id: UnknownProjectId,
		mdMsg: `
# No such project

## Things you can try
- List the configured projects:
~~~
$ genlayout layout
~~~`,
	},
	PermissionDeniedId: {
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied

genlayout could not read or write a file of the generated tree.
Check the ownership of the project's build directory.`,
	},
}

// Get returns the page with id, or nil.
func Get(id Id) *Issue { return issues[id] }

// Values returns every page ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

// Of returns the page linked by the first ActionableError in err's chain.
func Of(err error) *Issue {
	var ae *ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return Get(ae.Issue)
	}
	return nil
}
