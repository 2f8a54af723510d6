// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/genlayout/genlayout/pkg/workspace"
)

func newInitCommand(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a sample " + workspace.FileName,
		Long: `Create a sample workspace descriptor declaring a runtime, a generic IDE,
an Eclipse plugin and a web sub-project. Edit it to match the repository.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return app.fail(runInit(app, dir, force))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing descriptor")
	return cmd
}

func runInit(app *App, dir string, force bool) error {
	path := filepath.Join(dir, workspace.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(workspace.Template), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	abs, _ := filepath.Abs(path)
	fmt.Fprintf(app.stdout, "%s Created %s\n\n", SuccessStyle.Render("✓"), abs)
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(app.stdout, "  1. Point 'dir' of each project at an existing directory")
	fmt.Fprintln(app.stdout, "  2. Set the generator script and its grammar inputs")
	fmt.Fprintln(app.stdout, "  3. Run 'genlayout build'")
	return nil
}
