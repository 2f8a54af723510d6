// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/genlayout/genlayout/internal/config"
	"github.com/genlayout/genlayout/internal/generate"
	"github.com/genlayout/genlayout/internal/issue"
	"github.com/genlayout/genlayout/internal/pipeline"
	"github.com/genlayout/genlayout/pkg/workspace"
)

type (
	// App is the composition root of the CLI. Command handlers get their
	// configuration, logger and workspace through it.
	App struct {
		Config    config.Provider
		Generator generate.Generator
		stdout    io.Writer
		stderr    io.Writer
		configDir string

		flags  rootFlags
		cfg    *config.Config
		logger *log.Logger
	}

	// Dependencies are the injection points of NewApp. Nil fields get the
	// production defaults.
	Dependencies struct {
		Config config.Provider
		// Generator replaces the workspace's generator script.
		Generator generate.Generator
		Stdout    io.Writer
		Stderr    io.Writer
		// ConfigDir replaces the platform configuration directory.
		ConfigDir string
	}

	rootFlags struct {
		workspace  string
		configPath string
		verbose    bool
	}
)

// NewApp builds an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Generator: deps.Generator,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		configDir: deps.ConfigDir,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.cfg = config.DefaultConfig()
	app.logger = newLogger(app.stderr, false)
	return app
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "genlayout", Level: level})
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.flags.configPath, ConfigDirPath: a.configDir}
}

// loadConfig reads the app configuration. A broken file is reported and
// the defaults are used so that 'config init' and friends keep working.
func (a *App) loadConfig(ctx context.Context) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.flags.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	a.logger = newLogger(a.stderr, a.verbose())
}

func (a *App) verbose() bool { return a.flags.verbose || a.cfg.UI.Verbose }

// descriptorPath resolves --workspace, which may name the descriptor or
// its directory, or searches upwards from the working directory.
func (a *App) descriptorPath() (string, error) {
	if p := a.flags.workspace; p != "" {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			p = filepath.Join(p, workspace.FileName)
		}
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := workspace.Find(wd)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("find workspace").
			WithResource(wd).
			WithSuggestion("Run 'genlayout init' to create " + workspace.FileName).
			WithSuggestion("Pass --workspace to point at an existing descriptor").
			WithIssue(issue.WorkspaceNotFoundId).
			Wrap(err).
			BuildError()
	}
	return path, nil
}

func (a *App) loadWorkspace() (*workspace.Workspace, error) {
	path, err := a.descriptorPath()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Load(path)
	if err != nil {
		return nil, classify(err, "load workspace", path)
	}
	return ws, nil
}

type pipelineOptions struct {
	noState bool
	buildID string
}

// newPipeline loads the workspace and configures a pipeline for it with
// the app configuration applied.
func (a *App) newPipeline(po pipelineOptions) (*pipeline.Pipeline, error) {
	ws, err := a.loadWorkspace()
	if err != nil {
		return nil, err
	}
	return a.pipelineFor(ws, po)
}

func (a *App) pipelineFor(ws *workspace.Workspace, po pipelineOptions) (*pipeline.Pipeline, error) {
	opts := pipeline.Options{
		Workspace:        ws,
		Generator:        a.Generator,
		BuildID:          po.buildID,
		NoState:          po.noState,
		Parallelism:      a.cfg.Build.Parallelism,
		SourceExtensions: a.cfg.Build.SourceExtensions,
		Logger:           a.logger,
		Stdout:           a.stdout,
		Stderr:           a.stderr,
	}
	if dir := a.cfg.Build.StateDir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(ws.Root, filepath.FromSlash(dir))
		}
		opts.StateDir = dir
	}
	p, err := pipeline.New(opts)
	if err != nil {
		return nil, classify(err, "configure projects", filepath.Join(ws.Root, workspace.FileName))
	}
	return p, nil
}

// fail prints the catalog page of err in verbose mode and returns err.
func (a *App) fail(err error) error {
	if err == nil || !a.verbose() {
		return err
	}
	if is := issue.Of(err); is != nil {
		if page, rerr := is.Render(a.glamourStyle()); rerr == nil {
			fmt.Fprint(a.stderr, page)
		}
	}
	return err
}

func (a *App) glamourStyle() string {
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		return string(a.cfg.UI.ColorScheme)
	}
	return "auto"
}

// formatErrorForDisplay uses the actionable layout when err carries one.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
