package main

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
)

// Config holds the defaults every subcommand's flags fall back to. A YAML
// file loaded via --config supplies these before flag parsing overrides
// them, mirroring how magicschema.Config splits NewConfig from
// RegisterFlags so a config file and explicit flags compose predictably.
type Config struct {
	CatalogPath string `yaml:"catalogPath"`
	MaxErrors   int    `yaml:"maxErrors"`
	Validate    bool   `yaml:"validate"`
	LogLevel    string `yaml:"logLevel"`
	LogFormat   string `yaml:"logFormat"`
}

// NewConfig returns a Config with the tool's built-in defaults.
func NewConfig() *Config {
	return &Config{
		MaxErrors: 200,
		Validate:  true,
		LogLevel:  "info",
		LogFormat: "logfmt",
	}
}

// RegisterFlags adds the shared flags to flags, defaulting to c's current
// field values.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CatalogPath, "catalog", c.CatalogPath, "path to a CIDStdCat catalog file")
	flags.IntVar(&c.MaxErrors, "max-errors", c.MaxErrors, "abort after this many errors")
	flags.BoolVar(&c.Validate, "validate", c.Validate, "run DTD validation")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: logfmt, json")
}

// LoadConfigFile reads and unmarshals a YAML config file into c, overriding
// only the fields it sets.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}
