package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the geomstore command.
type Config struct {
	// Database is the path of the SQLite database file.
	Database string    `yaml:"database"`
	Log      LogConfig `yaml:"log"`
	Import   Import    `yaml:"import"`
}

type LogConfig struct {
	Verbose bool   `yaml:"verbose"`
	File    string `yaml:"file,omitempty"` // empty = no file logging
}

type Import struct {
	// Workers bounds the number of files decoded concurrently.
	Workers int `yaml:"workers"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Database: "geomstore.db",
		Import: Import{
			Workers: runtime.NumCPU(),
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("import workers must be at least 1")
	}
	return nil
}
