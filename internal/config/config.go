// Package config holds runtime options for the accessor core and the
// marker names shared with the generator.
//
// Options are read from accessor.yaml:
//
//	skip_generic_check: true
//	trace: false
//	require_markers: true
//	markers:
//	  generator_type: GeneratorType
//	  accessor: Accessor
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents accessor.yaml.
type Config struct {
	// SkipGenericCheck disables argument type checks for parameters whose
	// type involves an unresolved type parameter.
	SkipGenericCheck bool `yaml:"skip_generic_check,omitempty"`

	// Trace logs every resolution to the dispatcher's logger.
	Trace bool `yaml:"trace,omitempty"`

	// RequireMarkers makes the dispatcher reject receivers whose
	// descriptor lacks the accessor marker, and the generic registry drop
	// custom entries whose descriptor lacks the generator-type marker.
	RequireMarkers bool `yaml:"require_markers,omitempty"`

	// Markers overrides the marker names emitted by the generator.
	Markers Markers `yaml:"markers,omitempty"`
}

// Markers names the two generator markers.
type Markers struct {
	GeneratorType string `yaml:"generator_type,omitempty"`
	Accessor      string `yaml:"accessor,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses an accessor.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses accessor.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for accessor.yaml starting from dir and walking up
// to parent directories. It returns an empty path and nil error when no
// file exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadOrDefault finds the nearest accessor.yaml above dir and loads it,
// falling back to Default when none exists.
func LoadOrDefault(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadConfig(path)
}

func (c *Config) validate(path string) error {
	if c.Markers.GeneratorType != "" && c.Markers.GeneratorType == c.Markers.Accessor {
		return fmt.Errorf("%s: markers.generator_type and markers.accessor must differ (both %q)",
			path, c.Markers.Accessor)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Markers.GeneratorType == "" {
		c.Markers.GeneratorType = GeneratorTypeMarker
	}
	if c.Markers.Accessor == "" {
		c.Markers.Accessor = AccessorMarker
	}
}
