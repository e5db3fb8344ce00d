// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Sample SampleConfig `toml:"sample"`
	Plot   PlotConfig   `toml:"plot"`
	Bake   BakeConfig   `toml:"bake"`
}

// SampleConfig maps sampling-related settings.
type SampleConfig struct {
	From    *float64 `toml:"from"`
	To      *float64 `toml:"to"`
	Step    *float64 `toml:"step"`
	Workers *int     `toml:"workers"`
}

// PlotConfig maps plot-related settings.
type PlotConfig struct {
	Width   *int `toml:"width"`
	Height  *int `toml:"height"`
	Samples *int `toml:"samples"`
}

// BakeConfig maps bake-related settings.
type BakeConfig struct {
	DB *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("failed to decode config: unknown key %s", undecoded[0])
	}
	return cfg, nil
}

// DefaultTemplate is written by the config command when no file exists yet.
const DefaultTemplate = `# animeval configuration

[sample]
# from = 0.0
# to = 1.0
# step = 0.1
# workers = 4

[plot]
# width = 800
# height = 400
# samples = 200

[bake]
# db = "/path/to/samples.db"
`
