// Package config loads the dtree configuration file.
//
// The file lives at ~/.config/dtree/config.yaml (or under $XDG_CONFIG_HOME).
// A missing file is not an error: defaults apply. Options are read once at
// startup; the engine never caches config on its own.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Behavior holds the filter and traversal options consumed by the tree
// loader and search engine.
type Behavior struct {
	ShowHidden     bool `yaml:"show_hidden"`
	FollowSymlinks bool `yaml:"follow_symlinks"`
	ShowFiles      bool `yaml:"show_files"`
}

// Config is the top-level configuration for dtree.
type Config struct {
	Behavior Behavior `yaml:"behavior"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Behavior: Behavior{
			ShowHidden:     false,
			FollowSymlinks: false,
			ShowFiles:      false,
		},
	}
}

// Dir returns the configuration directory for dtree.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "dtree")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dtree")
}

// Path returns the configuration file path.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist. A malformed file is an error so a typo does not
// silently reset every option.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
