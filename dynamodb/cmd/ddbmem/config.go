package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFilename = "ddbmem.yaml"

// Config holds defaults for the command flags.
// Loaded from ddbmem.yaml if present.
type Config struct {
	// Schemas is the glob of schema files to load.
	Schemas string `yaml:"schemas"`

	// Fixtures is the YAML or JSON file of items to load.
	Fixtures string `yaml:"fixtures"`
}

// LoadConfig searches for ddbmem.yaml starting from the current directory
// and walking up to the filesystem root. Returns empty config if not found.
// Relative paths in the file are resolved against the file's directory.
func LoadConfig() (Config, error) {
	var cfg Config

	configPath := findConfigFile()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	dir := filepath.Dir(configPath)
	cfg.Schemas = resolve(dir, cfg.Schemas)
	cfg.Fixtures = resolve(dir, cfg.Fixtures)
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// findConfigFile searches for ddbmem.yaml walking up from current directory.
func findConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, configFilename)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return ""
		}
		dir = parent
	}
}
