// Package config loads the settings used by the filex command.
package config

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the database file used when none is configured.
	DefaultPath = "filex.db"

	envPath     = "FILEX_DB"
	envLogLevel = "FILEX_LOG_LEVEL"
)

type Config struct {
	// Path is the location of the database file.
	Path string `yaml:"path"`
	// ExportDir is where relative export and import files are resolved.
	ExportDir string `yaml:"exportDir"`
	// Log configures the logger.
	Log Log `yaml:"log"`
}

type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is either console or json.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Path: DefaultPath,
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at the given path on top of the defaults and
// applies environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if v := os.Getenv(envPath); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
		return nil
	default:
		return errors.Errorf("log format %q must be console or json", c.Log.Format)
	}
}

// Logger builds the logger described by the configuration.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
