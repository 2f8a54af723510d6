// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/genlayout/genlayout/internal/buildgraph"
	"github.com/genlayout/genlayout/internal/pipeline"
	"github.com/genlayout/genlayout/pkg/types"
)

type buildFlags struct {
	dryRun  bool
	noState bool
	buildID string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "list the operations without running them")
	cmd.Flags().BoolVar(&f.noState, "no-state", false, "ignore up-to-date records and run every operation")
	cmd.Flags().StringVar(&f.buildID, "build-id", "", "identifier keying manifest merges (default: random)")
}

func (f *buildFlags) options() pipelineOptions {
	return pipelineOptions{noState: f.noState, buildID: f.buildID}
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build [operation...]",
		Short: "Run operations and their dependencies",
		Long: `Run the named operations and everything they depend on. Without
arguments every operation runs. Operations whose inputs and outputs did not
change since their last successful run are reported as up to date.

Operations:
  generate                  run the generator and reclassify its output
  <project>:mergeManifest   merge the generated manifest into the jar
  <project>:jar             package the project's resources
  <project>:configurePde    prepare the Eclipse PDE directory
  eclipse                   every configurePde operation
  build                     every jar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.newPipeline(flags.options())
			if err != nil {
				return app.fail(err)
			}
			return app.fail(runTargets(cmd, app, p, flags.dryRun, args...))
		},
	}
	flags.register(cmd)
	return cmd
}

func newReclassifyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reclassify",
		Short: "Move non-source files from src-gen into the generated resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.newPipeline(pipelineOptions{noState: true})
			if err != nil {
				return app.fail(err)
			}
			results, err := p.Reclassify(cmd.Context())
			if err != nil {
				return app.fail(classify(err, "reclassify", "src-gen"))
			}
			for _, proj := range p.Projects() {
				name := proj.Paths.Project
				r := results[name]
				fmt.Fprintf(app.stdout, "%s moved %d, removed %d empty directories\n",
					KeyStyle.Render(name), len(r.Moved), len(r.Removed))
				for _, m := range r.Moved {
					app.logger.Debug("moved", "project", name, "from", m.From, "to", m.To)
				}
			}
			return nil
		},
	}
}

func newMergeManifestCommand(app *App) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "merge-manifest [project...]",
		Short: "Merge generated manifests into the packaged jars",
		Long: `Merge each bundle project's generated MANIFEST.MF into its jar. Without
arguments every bundle project on the main source set is merged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.newPipeline(flags.options())
			if err != nil {
				return app.fail(err)
			}
			names := args
			if len(names) == 0 {
				for _, proj := range p.Projects() {
					if _, ok := p.Graph().Operation(pipeline.MergeManifestOp(proj.Paths.Project)); ok {
						names = append(names, proj.Paths.Project)
					}
				}
			}
			targets := make([]string, 0, len(names))
			for _, name := range names {
				if _, err := p.Project(name); err != nil {
					return app.fail(classify(err, "merge manifest", name))
				}
				targets = append(targets, pipeline.MergeManifestOp(name))
			}
			if len(targets) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("no bundle projects to merge"))
				return nil
			}
			if err := runTargets(cmd, app, p, flags.dryRun, targets...); err != nil {
				return app.fail(err)
			}
			for _, name := range names {
				if o, ok := p.MergeOutcome(name); ok {
					fmt.Fprintf(app.stdout, "%s manifest %s\n", KeyStyle.Render(name), o)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPDECommand(app *App) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "pde",
		Short: "Prepare the Eclipse PDE directory of every PDE project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.newPipeline(flags.options())
			if err != nil {
				return app.fail(err)
			}
			if err := runTargets(cmd, app, p, flags.dryRun, pipeline.OpEclipse); err != nil {
				return app.fail(err)
			}
			for _, proj := range p.Projects() {
				if r, ok := p.PDEResult(proj.Paths.Project); ok {
					fmt.Fprintf(app.stdout, "%s %s (BUNDLE_ROOT_PATH=%s)\n",
						KeyStyle.Render(proj.Paths.Project), r.Dir, r.BundleRootPath)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// runTargets runs or plans targets and prints one line per operation.
func runTargets(cmd *cobra.Command, app *App, p *pipeline.Pipeline, dryRun bool, targets ...string) error {
	if dryRun {
		rep, err := p.DryRun(targets...)
		if err != nil {
			return classify(err, "plan build", fmt.Sprint(targets))
		}
		for _, r := range rep.Results {
			fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("would run"), KeyStyle.Render(r.Name))
		}
		return nil
	}

	app.logger.Debug("build", "id", p.BuildID())
	rep, err := p.Run(cmd.Context(), targets...)
	printReport(app.stdout, rep)
	if err != nil {
		return &ExitError{Code: types.ExitFailure, Err: classify(err, "build", fmt.Sprint(targets))}
	}
	return nil
}

func printReport(w io.Writer, rep buildgraph.Report) {
	for _, r := range rep.Results {
		var status string
		switch r.Status {
		case buildgraph.StatusExecuted:
			status = SuccessStyle.Render("✓ " + r.Status.String())
		case buildgraph.StatusUpToDate:
			status = SubtitleStyle.Render("= " + r.Status.String())
		case buildgraph.StatusFailed:
			status = ErrorStyle.Render("✗ " + r.Status.String())
		default:
			status = WarningStyle.Render("- " + r.Status.String())
		}
		line := fmt.Sprintf("%s %s", status, KeyStyle.Render(r.Name))
		if r.Duration > 0 {
			line += SubtitleStyle.Render(" (" + r.Duration.Round(time.Millisecond).String() + ")")
		}
		fmt.Fprintln(w, line)
	}
}
