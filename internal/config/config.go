// Package config loads the optional per-project settings file.
//
// The file lives at <root>/.trellis.yml and is plain settings, not state:
// every piece of worktree state is still derived from the bare store and the
// filesystem on each invocation. A missing file means all defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up at the project root.
const FileName = ".trellis.yml"

// Config holds per-project settings.
type Config struct {
	// Remote is the name of the shared upstream remote. Default "origin".
	Remote string `yaml:"remote"`

	// DefaultBranch overrides the auto-detected default branch (the branch
	// HEAD points at in the bare store). Empty means auto-detect.
	DefaultBranch string `yaml:"default_branch"`

	// Reserved lists extra top-level directory names that must never be
	// claimed by a worktree (a shared docs or local-data directory).
	Reserved []string `yaml:"reserved"`

	// Lazygit is the terminal UI binary launched by the lazygit command.
	// Default "lazygit".
	Lazygit string `yaml:"lazygit"`
}

// Default returns the configuration used when no settings file exists.
func Default() Config {
	return Config{
		Remote:  "origin",
		Lazygit: "lazygit",
	}
}

// Load reads the settings file from the given project root. A missing file
// is not an error; defaults fill any field the file leaves empty.
func Load(root string) (Config, error) {
	return LoadFrom(filepath.Join(root, FileName))
}

// LoadFrom reads a settings file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.Lazygit == "" {
		cfg.Lazygit = "lazygit"
	}

	return cfg, nil
}
