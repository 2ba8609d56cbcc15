package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/avelichko/maestro/internal/errors"
)

// Load reads a YAML configuration file and overlays it on the defaults.
// Missing keys keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeConfigNotFound, "config file not found: "+path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigNotFound, "reading config file", err)
	}
	return Parse(data)
}

// Parse overlays YAML content on the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigUnmarshal, "parsing config YAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the given path when present; an empty path or a
// missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeConfigNotFound) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
