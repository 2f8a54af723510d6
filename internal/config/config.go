// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/genlayout/genlayout/internal/issue"
	"github.com/genlayout/genlayout/pkg/cueutil"
)

const (
	// AppName names the configuration directory.
	AppName = "genlayout"
	// ConfigFileName is the configuration file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the configuration file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides: GENLAYOUT_BUILD_PARALLELISM
	// overrides build.parallelism.
	EnvPrefix = "GENLAYOUT"
)

//go:embed config_schema.cue
var configSchema string

// Keys lists every configuration key in display order.
var Keys = []string{
	"ui.verbose",
	"ui.color_scheme",
	"build.parallelism",
	"build.source_extensions",
	"build.state_dir",
	"watch.debounce",
}

// ConfigDir returns the platform configuration directory of genlayout.
//
//nolint:revive // config.ConfigDir reads better than config.Dir at call sites
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// FilePath returns the configuration file Load would read for opts, whether
// or not it exists.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration. It returns the defaults when no file
// exists, except that an explicit ConfigFilePath must exist. The second
// result is the file that was read, or "".
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := newViper()
	path, err := FilePath(opts)
	if err != nil {
		return nil, "", err
	}

	resolved := ""
	switch {
	case fileExists(path):
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the configuration schema ('genlayout config show' prints the defaults)").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		resolved = path
	case opts.ConfigFilePath != "":
		return nil, "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'genlayout config init' to create a default configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
			BuildError()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolved).
			WithSuggestion("Check the GENLAYOUT_* environment variables").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}
	return cfg, resolved, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
	v.SetDefault("build.parallelism", d.Build.Parallelism)
	v.SetDefault("build.source_extensions", d.Build.SourceExtensions)
	v.SetDefault("build.state_dir", d.Build.StateDir)
	v.SetDefault("watch.debounce", d.Watch.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadCUEIntoViper validates the file against #Config and merges it over
// the defaults. Fields are optional, so validation is not concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	cctx := cuecontext.New()
	schemaValue := cctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}
	userValue := cctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var m map[string]any
	if err := unified.Decode(&m); err != nil {
		return cueutil.FormatError(err, path)
	}
	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ErrConfigExists is returned by CreateDefault when the file already exists.
var ErrConfigExists = errors.New("config file already exists")

// CreateDefault writes the default configuration to path, creating its
// directory. An existing file is left alone and reported with
// ErrConfigExists.
func CreateDefault(path string) error {
	if fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder
	sb.WriteString("// genlayout configuration\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n\n")

	sb.WriteString("build: {\n")
	fmt.Fprintf(&sb, "\tparallelism: %d\n", cfg.Build.Parallelism)
	if len(cfg.Build.SourceExtensions) > 0 {
		quoted := make([]string, 0, len(cfg.Build.SourceExtensions))
		for _, ext := range cfg.Build.SourceExtensions {
			quoted = append(quoted, fmt.Sprintf("%q", ext))
		}
		fmt.Fprintf(&sb, "\tsource_extensions: [%s]\n", strings.Join(quoted, ", "))
	}
	fmt.Fprintf(&sb, "\tstate_dir:   %q\n", cfg.Build.StateDir)
	sb.WriteString("}\n\n")

	sb.WriteString("watch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("}\n")
	return sb.String()
}

// Values returns cfg as key/value strings in Keys order.
func Values(cfg *Config) [][2]string {
	return [][2]string{
		{"ui.verbose", fmt.Sprint(cfg.UI.Verbose)},
		{"ui.color_scheme", string(cfg.UI.ColorScheme)},
		{"build.parallelism", fmt.Sprint(cfg.Build.Parallelism)},
		{"build.source_extensions", strings.Join(cfg.Build.SourceExtensions, ",")},
		{"build.state_dir", cfg.Build.StateDir},
		{"watch.debounce", cfg.Watch.Debounce.String()},
	}
}
