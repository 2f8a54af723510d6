// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/genlayout/genlayout/pkg/workspace"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "genlayout",
		Short: "Lay out and package generated sub-projects",
		Long: TitleStyle.Render("genlayout") + SubtitleStyle.Render(" - lay out and package generated sub-projects") + `

genlayout gives every sub-project of a code generator a conventional
directory layout, moves non-source files the generator wrote into the
resource tree, merges generated manifests into the packaged jars and
prepares Eclipse PDE settings.

Sub-projects are declared in '` + workspace.FileName + `' in the repository root.

` + SubtitleStyle.Render("Examples:") + `
  genlayout init               Create a sample ` + workspace.FileName + `
  genlayout layout             Show the resolved directories
  genlayout build              Generate, reclassify, merge and package
  genlayout build --dry-run    List the operations a build would run
  genlayout watch              Rebuild when grammar inputs change`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.loadConfig(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&app.flags.workspace, "workspace", "w", "", "workspace descriptor or its directory (default: search upwards for "+workspace.FileName+")")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is the platform config dir)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	root.AddCommand(
		newInitCommand(app),
		newLayoutCommand(app),
		newBuildCommand(app),
		newReclassifyCommand(app),
		newMergeManifestCommand(app),
		newPDECommand(app),
		newWatchCommand(app),
		newSettingsCommand(app),
		newConfigCommand(app),
	)
	return root
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the resulting status.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(int(exitCodeOf(err)))
	}
}
