// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions selects where configuration comes from.
type LoadOptions struct {
	// ConfigFilePath forces a specific file; it must exist.
	ConfigFilePath string
	// ConfigDirPath replaces the platform configuration directory.
	ConfigDirPath string
}

// Provider loads configuration.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider returns the file-backed provider.
func NewProvider() Provider { return fileProvider{} }

func (fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := Load(ctx, opts)
	return cfg, err
}
