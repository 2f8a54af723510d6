// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genlayout/genlayout/internal/generate"
	"github.com/genlayout/genlayout/internal/pipeline"
	"github.com/genlayout/genlayout/internal/watch"
	"github.com/genlayout/genlayout/pkg/workspace"
)

func newWatchCommand(app *App) *cobra.Command {
	var noInitial bool
	cmd := &cobra.Command{
		Use:   "watch [operation...]",
		Short: "Rebuild whenever grammar inputs change",
		Long: `Run a build, then watch the generator inputs and the workspace descriptor
and build again after every change. Generated trees are not watched.
Each rebuild starts a new build, so manifests are merged again.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(runWatch(cmd, app, args, !noInitial))
		},
	}
	cmd.Flags().BoolVar(&noInitial, "no-initial-build", false, "wait for the first change before building")
	return cmd
}

func runWatch(cmd *cobra.Command, app *App, targets []string, initial bool) error {
	ws, err := app.loadWorkspace()
	if err != nil {
		return err
	}
	p, err := app.pipelineFor(ws, pipelineOptions{})
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) error {
		// The descriptor may have changed as well.
		ws, err := app.loadWorkspace()
		if err != nil {
			return err
		}
		p, err := app.pipelineFor(ws, pipelineOptions{})
		if err != nil {
			return err
		}
		rep, err := p.Run(ctx, targets...)
		printReport(app.stdout, rep)
		return err
	}

	if initial {
		rep, err := p.Run(cmd.Context(), targets...)
		printReport(app.stdout, rep)
		if err != nil {
			app.logger.Error("initial build failed", "err", err)
		}
	}

	w, err := watch.New(watch.Config{
		Root:     ws.Root,
		Patterns: watchPatterns(ws),
		Ignore:   generatedTrees(ws.Root, p),
		Debounce: app.cfg.Watch.Debounce,
		Logger:   app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			inputs := 0
			if ws.Generator != nil {
				for _, c := range changed {
					if generate.MatchInput(ws.Generator.Inputs, c) {
						inputs++
					}
				}
			}
			app.logger.Debug("rebuilding", "changed", strings.Join(changed, ", "), "grammar_inputs", inputs)
			return rebuild(ctx)
		},
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	fmt.Fprintf(app.stdout, "%s watching %s (Ctrl+C to stop)\n", KeyStyle.Render("→"), w.Root())
	return w.Run(cmd.Context())
}

// watchPatterns selects the generator inputs and the descriptor. Without
// declared inputs every file outside the generated trees counts.
func watchPatterns(ws *workspace.Workspace) []string {
	if ws.Generator == nil || len(ws.Generator.Inputs) == 0 {
		return nil
	}
	return append([]string{workspace.FileName}, ws.Generator.Inputs...)
}

// generatedTrees returns ignore patterns for every output root inside the
// workspace, so that a build does not trigger the next one.
func generatedTrees(root string, p *pipeline.Pipeline) []string {
	seen := make(map[string]bool)
	var out []string
	for _, proj := range p.Projects() {
		rel, err := filepath.Rel(root, proj.Paths.OutputRoot)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		pattern := filepath.ToSlash(rel) + "/**"
		if !seen[pattern] {
			seen[pattern] = true
			out = append(out, pattern)
		}
	}
	return out
}
