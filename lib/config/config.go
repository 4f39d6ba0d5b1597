// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "POLYCONVERTER_CONFIG"

// Config is the complete polyconverter configuration.
type Config struct {
	// Directory is the folder scanned for layouts and sidecars.
	// Default: the current directory.
	Directory string `yaml:"directory"`

	// Format selects the layout codec: "binary" or "cbor".
	// Default: binary
	Format string `yaml:"format"`

	// Color controls colored markers: "auto", "always", or "never".
	// Default: auto
	Color string `yaml:"color"`

	// LogLevel is the minimum level of structured logs on stderr:
	// "debug", "info", "warn", or "error".
	// Default: info
	LogLevel string `yaml:"log_level"`

	// Backup configures the one-time layout backups.
	Backup BackupConfig `yaml:"backup"`
}

// BackupConfig configures backups.
type BackupConfig struct {
	// Verify compares digests of each new backup against its source.
	// Default: true
	Verify bool `yaml:"verify"`
}

var (
	formats   = []string{"binary", "cbor"}
	colors    = []string{"auto", "always", "never"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Default returns the built-in configuration. A config file only needs
// to name the fields it changes.
func Default() *Config {
	return &Config{
		Directory: ".",
		Format:    "binary",
		Color:     "auto",
		LogLevel:  "info",
		Backup: BackupConfig{
			Verify: true,
		},
	}
}

// Load loads configuration from the file named by POLYCONVERTER_CONFIG.
// It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a polyconverter.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, on top of
// [Default]. Unknown keys are an error so that a misspelled option is
// not silently ignored.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Expand ${HOME} and similar variables in the directory.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// directory.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Directory = expandVars(c.Directory, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Directory == "" {
		errs = append(errs, fmt.Errorf("directory is required"))
	}
	if !slices.Contains(formats, c.Format) {
		errs = append(errs, fmt.Errorf("format must be one of: %v", formats))
	}
	if !slices.Contains(colors, c.Color) {
		errs = append(errs, fmt.Errorf("color must be one of: %v", colors))
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level must be one of: %v", logLevels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
