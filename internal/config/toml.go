// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Keys    KeysConfig    `toml:"keys"`
	Capture CaptureConfig `toml:"capture"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
}

// KeysConfig maps key bindings by name.
type KeysConfig struct {
	Left      *string `toml:"left"`
	LeftAlias *string `toml:"left_alias"`
	Right     *string `toml:"right"`
	Shoot     *string `toml:"shoot"`
	Quit      *string `toml:"quit"`
}

// CaptureConfig maps input capture settings.
type CaptureConfig struct {
	Device *string `toml:"device"`
	Queue  *int    `toml:"queue"`
}

// DisplayConfig maps rendering settings.
type DisplayConfig struct {
	FPS *int `toml:"fps"`
}

// LogConfig maps diagnostics settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	File   *string `toml:"file"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an
// error. Unknown keys are rejected so typos do not silently fall back to
// defaults.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}
