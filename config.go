package attest

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/provenly/attest/pkg/logging"
)

// Config configures the CLI and the facade helpers.
type Config struct {
	// KeyPath is the PEM file holding the signing key.
	KeyPath string `yaml:"keyPath"`
	// StorePath is the envelope store directory.
	StorePath string `yaml:"storePath"`
	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"logLevel"`
}

// LoadConfig reads a YAML config file. A missing path yields the zero
// config, not an error.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Logger builds the logger the config asks for.
func (c Config) Logger() *slog.Logger {
	return logging.New(logging.ParseLevel(c.LogLevel))
}
