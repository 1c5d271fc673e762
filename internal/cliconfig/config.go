// Package cliconfig loads and validates the etcdkv CLI configuration file.
package cliconfig

import (
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Config describes the YAML configuration consumed by the etcdkv CLI.
type Config struct {
	// Endpoint is the base URL of the store.
	Endpoint string `yaml:"endpoint"`
	// Root is the namespace root prefixed to every key.
	Root string `yaml:"root"`
	// Version is the API version segment of request paths.
	Version string `yaml:"version"`
	// TimeoutSeconds bounds each HTTP round trip.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Endpoint:       "http://127.0.0.1:2379",
		Root:           "/",
		Version:        "v2",
		TimeoutSeconds: 10,
	}
}

// Load reads a YAML configuration file, filling unset fields from Default
// and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cliconfig: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cliconfig: parse %s: %w", path, err)
	}
	if cfg.Root == "" {
		cfg.Root = "/"
	}
	if cfg.Version == "" {
		cfg.Version = "v2"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 10
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cliconfig: invalid %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for structural errors.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, is.URL),
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Version, validation.Required),
		validation.Field(&c.TimeoutSeconds, validation.Min(1)),
	)
}
