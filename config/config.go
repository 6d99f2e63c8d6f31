// Package config loads the user's config file.
//
// The file lives at $HTTPIE_CONFIG_DIR/config.json (default ~/.httpie/config.json).
// It is decoded with a YAML decoder, so both JSON and YAML are accepted.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirEnv overrides the config directory.
	ConfigDirEnv = "HTTPIE_CONFIG_DIR"
	// Filename is the name of the config file inside the config directory.
	Filename = "config.json"

	defaultDirName = ".httpie"
)

// Config represents the contents of the config file
type Config struct {
	// DefaultOptions are prepended to the command line arguments.
	DefaultOptions []string `yaml:"default_options"`
	// ImplicitContentType is "json" or "form". "form" implies --form unless --json is given.
	ImplicitContentType string `yaml:"implicit_content_type"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		ImplicitContentType: "json",
	}
}

// Dir returns the config directory
func Dir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	return filepath.Join(home, defaultDirName), nil
}

// Load reads the config file from dir. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	if c.ImplicitContentType != "json" && c.ImplicitContentType != "form" {
		return nil, errors.Errorf("invalid implicit_content_type in %s: %q (must be json or form)", path, c.ImplicitContentType)
	}
	return c, nil
}

// LoadDefault reads the config file from the default directory
func LoadDefault() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return Load(dir)
}
