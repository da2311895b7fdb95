package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Prompt   string   `yaml:"prompt"`
	History  string   `yaml:"history"`
	TCO      bool     `yaml:"tco"`
	Stats    bool     `yaml:"stats"`
	Prelude  bool     `yaml:"prelude"`
	Load     []string `yaml:"load"`
	LogLevel string   `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Prompt:   ">>> ",
		History:  ".liscript_history",
		TCO:      true,
		Prelude:  true,
		LogLevel: "info",
	}
}

// Load reads a YAML config on top of the defaults. A missing file is not an
// error: the defaults are returned as is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel)))
	return lvl, err
}
