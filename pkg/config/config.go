package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the catalogger configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Opm     OpmConfig     `yaml:"opm"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// OpmConfig controls how opm is invoked
type OpmConfig struct {
	// Command is the opm command line, split with shell quoting rules
	Command string `yaml:"command" validate:"required"`
	// SkipValidate disables `opm validate` on the generated catalog
	SkipValidate bool `yaml:"skip_validate,omitempty"`
}

// OutputConfig says where generated files go
type OutputConfig struct {
	ConfigsDir string `yaml:"configs_dir" validate:"required"`
	// CacheDir is optional; without it no serve cache is built
	CacheDir string `yaml:"cache_dir,omitempty"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Opm: OpmConfig{
			Command: "opm",
		},
		Output: OutputConfig{
			ConfigsDir: "catalog",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration once all overrides are applied
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
