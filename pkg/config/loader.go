package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FromFile reads a YAML configuration file on top of the defaults.
func FromFile(path string) (Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(b)
	if err != nil {
		return cfg, fmt.Errorf("read config at %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration on top of the defaults.
// Unknown fields are rejected.
func Parse(b []byte) (Configuration, error) {
	cfg := Defaults()
	m := map[string]any{}

	err := yaml.Unmarshal(b, &m)
	if err != nil {
		return cfg, err
	}

	b, err = json.Marshal(m)
	if err != nil {
		return cfg, fmt.Errorf("marshal config: %w", err)
	}

	d := json.NewDecoder(bytes.NewReader(b))
	d.DisallowUnknownFields()

	err = d.Decode(&cfg)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}
