// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/genlayout/genlayout/pkg/settings"
)

func newSettingsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and edit settings files such as build.properties",
		Long: `Read and edit ordered key=value settings files. Files are written in
ISO-8859-1 without a timestamp line, so unchanged content yields identical
bytes.`,
		RunE: func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value of key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.ReadFile(args[0])
			if err != nil {
				return app.fail(classify(err, "read settings", args[0]))
			}
			v, ok := s.Get(args[1])
			if !ok {
				return app.fail(fmt.Errorf("%s: no key %q", args[0], args[1]))
			}
			fmt.Fprintln(app.stdout, v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "Set key, creating the file when needed",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(editSettings(args[0], func(s *settings.Settings) { s.Put(args[1], args[2]) }))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <file> <key>",
		Short: "Remove key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var removed bool
			if err := editSettings(args[0], func(s *settings.Settings) { removed = s.Remove(args[1]) }); err != nil {
				return app.fail(err)
			}
			if !removed {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("no key "+args[1]))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <file>",
		Short: "Print every entry in file order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := settings.ReadFile(args[0])
			if err != nil {
				return app.fail(classify(err, "read settings", args[0]))
			}
			for k, v := range s.All() {
				fmt.Fprintf(app.stdout, "%s=%s\n", k, v)
			}
			return nil
		},
	})

	return cmd
}

// editSettings loads path, applies edit and writes the result back. A
// missing file starts empty.
func editSettings(path string, edit func(*settings.Settings)) error {
	s, err := settings.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s = settings.New()
	case err != nil:
		return classify(err, "read settings", path)
	}
	edit(s)
	if err := settings.WriteFile(path, s, ""); err != nil {
		return classify(err, "write settings", path)
	}
	return nil
}
