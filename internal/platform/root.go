package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the workspace marker looked up by FindRoot.
const ConfigFileName = "strata.yaml"

// Config describes a mirrored workspace: which server it talks to and
// which subtree it mirrors. The token is deliberately not part of the
// file; it comes from the environment or a flag.
type Config struct {
	Server string   `yaml:"server"`
	Root   string   `yaml:"root,omitempty"`
	Ignore []string `yaml:"ignore,omitempty"`
}

// FindRoot recursively looks upwards for a workspace root indicator,
// a strata.yaml file. If found, returns the absolute path to the
// directory containing it.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigFileName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("workspace root not found")
}

// LoadConfig reads the workspace configuration from dir.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}
	if cfg.Server == "" {
		return nil, fmt.Errorf("%s has no server URL", ConfigFileName)
	}
	if cfg.Root == "" {
		cfg.Root = "root"
	}
	return &cfg, nil
}

// SaveConfig writes the workspace configuration into dir.
func SaveConfig(dir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFileName), data, 0644)
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
