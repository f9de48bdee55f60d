// Package config loads and validates the optional .cmdexec YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for runner and history configuration.
const (
	DefaultMaxOutput = 1 << 20 // 1 MB
	DefaultHistory   = 20
)

// Config holds the parsed .cmdexec configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int    `yaml:"version"`
	RawMaxOutput int    `yaml:"max_output"` // per-stream output cap, bytes
	RawHistory   *int   `yaml:"history"`    // runs kept on disk; 0 disables
	HistoryDir   string `yaml:"history_dir"`
}

// MaxOutputBytes returns the configured output cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// HistorySize returns the number of runs to retain. An explicit 0
// disables history; an absent field falls back to the default.
func (c *Config) HistorySize() int {
	if c.RawHistory != nil {
		if *c.RawHistory < 0 {
			return 0
		}
		return *c.RawHistory
	}
	return DefaultHistory
}

// Load reads the .cmdexec file from dir. If no .cmdexec file exists,
// a default Config is returned.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ".cmdexec")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading .cmdexec: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .cmdexec: %w", err)
	}
	return cfg, nil
}
