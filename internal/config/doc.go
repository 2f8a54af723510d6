// SPDX-License-Identifier: MPL-2.0

// Package config loads the genlayout application configuration.
//
// The file is config.cue in the platform configuration directory
// ($XDG_CONFIG_HOME/genlayout on Linux, ~/Library/Application Support/genlayout
// on macOS, %APPDATA%\genlayout on Windows). It is validated against the
// embedded config_schema.cue, merged over the defaults with Viper, and every
// key can be overridden by a GENLAYOUT_<SECTION>_<KEY> environment variable.
package config
