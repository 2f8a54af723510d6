// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/genlayout/genlayout/pkg/layout"
)

// layoutDocument is the machine-readable form of 'genlayout layout'.
type layoutDocument struct {
	Workspace string         `json:"workspace" yaml:"workspace" toml:"workspace"`
	Projects  []layout.Paths `json:"projects" yaml:"projects" toml:"projects"`
}

func newLayoutCommand(app *App) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the resolved directories of every sub-project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.newPipeline(pipelineOptions{noState: true})
			if err != nil {
				return app.fail(err)
			}
			doc := layoutDocument{}
			for _, proj := range p.Projects() {
				doc.Projects = append(doc.Projects, proj.Paths)
			}
			if ws, err := app.descriptorPath(); err == nil {
				doc.Workspace = ws
			}
			return app.fail(writeLayout(app.stdout, doc, format))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "table", "output format: table, json, yaml or toml")
	return cmd
}

func writeLayout(w io.Writer, doc layoutDocument, format string) error {
	switch format {
	case "table":
		fmt.Fprintln(w, layoutTable(doc.Projects))
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(doc)
	}
	return fmt.Errorf("unknown format %q (want table, json, yaml or toml)", format)
}

func layoutTable(projects []layout.Paths) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.Project,
			p.SourceSet,
			strings.Join(p.Capabilities, ","),
			p.SrcGen,
			p.ResourcesGen,
			orDash(p.Manifest),
			orDash(p.Descriptor),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("PROJECT", "SOURCE SET", "CAPABILITIES", "SRC-GEN", "RESOURCES-GEN", "MANIFEST", "DESCRIPTOR").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
