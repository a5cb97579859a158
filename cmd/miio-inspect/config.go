package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/escoand/python-miio/pkg/status"
)

// Config holds the inspector configuration. It is read from an optional
// YAML file; flags given on the command line take precedence.
type Config struct {
	Type        string   `yaml:"type"`
	Defs        []string `yaml:"defs"`
	Data        string   `yaml:"data"`
	LogLevel    string   `yaml:"log_level"`
	Trace       string   `yaml:"trace"`
	Describe    string   `yaml:"describe"`
	Interactive bool     `yaml:"interactive"`
	Simulate    bool     `yaml:"simulate"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Type:        "AirPurifierStatus",
		LogLevel:    "info",
		Interactive: true,
	}
}

// LoadConfigFile reads a YAML configuration file over base.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyFlags copies the flags that were set explicitly from flagCfg into cfg.
func ApplyFlags(fs *flag.FlagSet, cfg, flagCfg Config) Config {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			cfg.Type = flagCfg.Type
		case "defs":
			cfg.Defs = flagCfg.Defs
		case "data":
			cfg.Data = flagCfg.Data
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "trace":
			cfg.Trace = flagCfg.Trace
		case "describe":
			cfg.Describe = flagCfg.Describe
		case "interactive":
			cfg.Interactive = flagCfg.Interactive
		case "simulate":
			cfg.Simulate = flagCfg.Simulate
		}
	})
	return cfg
}

// Validate checks option values.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Describe {
	case "", "yaml", "cbor":
	default:
		return fmt.Errorf("unknown describe format: %s (must be yaml or cbor)", c.Describe)
	}
	if c.Type == "" {
		return fmt.Errorf("status type required")
	}
	return nil
}

// ParseLevel maps a log level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (must be debug, info, warn, or error)", level)
	}
}

// LoadData reads an initial raw payload from a YAML mapping.
func LoadData(path string) (status.Data, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var data status.Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return data, nil
}

// listFlag collects a comma-separated or repeated string flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}
