package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// FileName is the config file looked up in the user and local directories.
const FileName = "balloonpop.yaml"

// Default returns the embedded default configuration.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml is invalid: %v", err))
	}
	return cfg
}

// Load loads the configuration. Values missing from a file keep their
// embedded defaults.
// Search order: customPath -> ~/.balloonpop/config.yaml -> ./configs/balloonpop.yaml -> embedded default
func Load(customPath string) (Config, error) {
	cfg := Default()

	// A custom path must exist and parse
	if customPath != "" {
		if err := readInto(customPath, &cfg); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{userConfigPath(), filepath.Join("configs", FileName)} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := readInto(path, &cfg); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	return cfg, cfg.Validate()
}

func readInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// userConfigPath returns the path to the user config file, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".balloonpop", "config.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
