// Package config loads the command line configuration from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/viant/kanon"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the kanon command configuration.
type Config struct {
	// Database is the SQLite DSN holding input, output and plans.
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	// IDColumn optionally names the column used as row id.
	IDColumn string `yaml:"id_column"`
	Output   string `yaml:"output"`
	// Plan names the saved plan used by fit and apply.
	Plan      string       `yaml:"plan"`
	Anonymize kanon.Config `yaml:"anonymize"`
	Log       Log          `yaml:"log"`
}

// Log configures the zap logger.
type Log struct {
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: "kanon.db",
		Plan:     "default",
		Anonymize: kanon.Config{
			KTarget: 5,
			Index:   kanon.IndexForest,
		},
		Log: Log{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults; a missing file keeps the defaults.
// KANON_DATABASE and KANON_LOG_LEVEL override the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if v := os.Getenv("KANON_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("KANON_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return cfg, nil
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database is required")
	}
	if c.Table == "" {
		return fmt.Errorf("config: table is required")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	return nil
}

// Logger builds a zap logger writing to stderr.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if strings.ToLower(l.Format) == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
