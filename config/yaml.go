package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// parseYAML overlays the values present in the YAML file onto cfg.
// Keys missing from the file keep their current values.
func parseYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}
