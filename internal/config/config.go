// Package config loads the user-facing application configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default preview settings.
const (
	DefaultPreviewBackend = "kitty"
	DefaultPreviewWidth   = 800
	DefaultPreviewHeight  = 600
)

// Config is the user configuration.
type Config struct {
	Theme     Theme             `yaml:"theme"`
	Bookmarks map[string]string `yaml:"bookmarks"`
	Preview   Preview           `yaml:"preview"`
}

// Theme holds color settings.
type Theme struct {
	ColorScheme string `yaml:"color_scheme"`
}

// Preview holds image preview settings.
type Preview struct {
	Backend     string     `yaml:"backend"`
	Progressive bool       `yaml:"progressive"`
	Resolution  Resolution `yaml:"resolution"`
}

// Resolution is a preview render size.
type Resolution struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Bookmarks: map[string]string{},
		Preview: Preview{
			Backend: DefaultPreviewBackend,
			Resolution: Resolution{
				Width:  DefaultPreviewWidth,
				Height: DefaultPreviewHeight,
			},
		},
	}
}

// Load reads the configuration from path. A missing file is not an error,
// it returns the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to path. Creating parent directories is
// left to the caller.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}
