// Package config loads the optional TOML configuration file used by the
// ttnn command line tools.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the tunable defaults of the CLI and the server.
type Config struct {
	// TypeAnnotations controls whether serialization writes
	// param:<name>:<type> tokens by default.
	TypeAnnotations bool

	// TargetVersion is the NN syntax version emitted sequences are
	// rewritten for; empty means no compatibility rewriting.
	TargetVersion string

	// ExplicitStrings makes allocation-mode serialization write strings
	// inline rather than as placeholders.
	ExplicitStrings bool

	// ListenAddr is the address the conversion server binds to.
	ListenAddr string

	// StorageDir is where the server keeps its example database.
	StorageDir string
}

// marshaledConfig is the TOML-facing shape of Config.
type marshaledConfig struct {
	TypeAnnotations *bool  `toml:"type_annotations"`
	TargetVersion   string `toml:"target_version"`
	ExplicitStrings bool   `toml:"explicit_strings"`
	ListenAddr      string `toml:"listen"`
	StorageDir      string `toml:"storage_dir"`
}

// Default is the configuration used when no file is present.
func Default() Config {
	return Config{
		TypeAnnotations: true,
		ListenAddr:      ":8412",
		StorageDir:      ".",
	}
}

// Load reads the configuration file at the given path, filling in defaults
// for everything it does not set. A missing file is not an error; it yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var mc marshaledConfig
	if err := toml.Unmarshal(data, &mc); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if mc.TypeAnnotations != nil {
		cfg.TypeAnnotations = *mc.TypeAnnotations
	}
	if mc.TargetVersion != "" {
		cfg.TargetVersion = mc.TargetVersion
	}
	cfg.ExplicitStrings = mc.ExplicitStrings
	if mc.ListenAddr != "" {
		cfg.ListenAddr = mc.ListenAddr
	}
	if mc.StorageDir != "" {
		cfg.StorageDir = mc.StorageDir
	}
	return cfg, nil
}
