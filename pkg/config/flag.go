package config

import (
	"errors"
	"fmt"
)

// FileFlag is a flag.Value that replaces Target with the configuration
// loaded from the given YAML file.
// It must be parsed before the flags that override single settings.
type FileFlag struct {
	Path   string
	Target *Configuration
	Loaded bool
}

func (f *FileFlag) Set(path string) error {
	if path == "" {
		return errors.New("empty config file path")
	}

	cfg, err := FromFile(path)
	if err != nil {
		return fmt.Errorf("load -config: %w", err)
	}

	f.Path = path
	*f.Target = cfg
	f.Loaded = true

	return nil
}

func (f *FileFlag) String() string {
	return f.Path
}
