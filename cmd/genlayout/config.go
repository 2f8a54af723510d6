// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genlayout/genlayout/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage genlayout configuration",
		Long: `Manage genlayout configuration.

Configuration is stored in:
  - Linux: ~/.config/genlayout/config.cue
  - macOS: ~/Library/Application Support/genlayout/config.cue
  - Windows: %APPDATA%\genlayout\config.cue

Every key can be overridden with a GENLAYOUT_* environment variable,
for example GENLAYOUT_BUILD_PARALLELISM=2.`,
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
			fmt.Fprintln(app.stdout)
			source := SubtitleStyle.Render("(using defaults)")
			if path != "" {
				source = path
			}
			fmt.Fprintf(app.stdout, "%s: %s\n\n", KeyStyle.Render("Config file"), source)
			for _, kv := range config.Values(cfg) {
				fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render(kv[0]), SuccessStyle.Render(kv[1]))
			}
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.FilePath(app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			if err := config.CreateDefault(path); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					fmt.Fprintf(app.stdout, "%s %s already exists\n", WarningStyle.Render("!"), path)
					return nil
				}
				return app.fail(fmt.Errorf("failed to create config: %w", err))
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.FilePath(app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}
