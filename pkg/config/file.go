package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var structValidator = validator.New()

// LoadYAML reads and validates a NodeConfig from a YAML file, applying
// defaults before returning it. Struct-tag validation (required fields,
// non-empty endpoint list) runs via go-playground/validator before the
// JSON-Schema-shaped semantic defaults are applied.
func LoadYAML(path string) (*NodeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg NodeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	if err := structValidator.Struct(&cfg); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("%s: %v", path, err)}
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
