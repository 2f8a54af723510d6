// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ColorScheme selects the CLI palette and the issue page style.
type ColorScheme string

const (
	ColorSchemeAuto  ColorScheme = "auto"
	ColorSchemeDark  ColorScheme = "dark"
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned for an unknown color scheme.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidConfig is returned for a configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Config is the application configuration.
	Config struct {
		UI    UIConfig    `json:"ui" yaml:"ui" toml:"ui" mapstructure:"ui"`
		Build BuildConfig `json:"build" yaml:"build" toml:"build" mapstructure:"build"`
		Watch WatchConfig `json:"watch" yaml:"watch" toml:"watch" mapstructure:"watch"`
	}

	// UIConfig configures output.
	UIConfig struct {
		Verbose     bool        `json:"verbose" yaml:"verbose" toml:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" yaml:"color_scheme" toml:"color_scheme" mapstructure:"color_scheme"`
	}

	// BuildConfig configures pipeline runs.
	BuildConfig struct {
		// Parallelism bounds concurrent operations; 0 means the number of CPUs.
		Parallelism int `json:"parallelism" yaml:"parallelism" toml:"parallelism" mapstructure:"parallelism"`
		// SourceExtensions overrides the workspace's source allow-list when set.
		SourceExtensions []string `json:"source_extensions" yaml:"source_extensions" toml:"source_extensions" mapstructure:"source_extensions"`
		// StateDir is relative to the workspace root.
		StateDir string `json:"state_dir" yaml:"state_dir" toml:"state_dir" mapstructure:"state_dir"`
	}

	// WatchConfig configures watch mode.
	WatchConfig struct {
		Debounce time.Duration `json:"debounce" yaml:"debounce" toml:"debounce" mapstructure:"debounce"`
	}

	// InvalidConfigError lists every field that failed validation.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		UI:    UIConfig{ColorScheme: ColorSchemeAuto},
		Build: BuildConfig{StateDir: ".genlayout/state"},
		Watch: WatchConfig{Debounce: 500 * time.Millisecond},
	}
}

// Validate reports whether s names a known scheme.
func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidColorScheme, s)
}

// Validate checks the rules the schema cannot see after environment
// overrides were applied.
func (c *Config) Validate() error {
	var errs []error
	if err := c.UI.ColorScheme.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Build.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("build.parallelism must not be negative, got %d", c.Build.Parallelism))
	}
	for _, ext := range c.Build.SourceExtensions {
		if strings.TrimSpace(strings.TrimPrefix(ext, ".")) == "" {
			errs = append(errs, errors.New("build.source_extensions must not contain empty entries"))
			break
		}
	}
	if strings.TrimSpace(c.Build.StateDir) == "" {
		errs = append(errs, errors.New("build.state_dir must not be empty"))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap exposes ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
