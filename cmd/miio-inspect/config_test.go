package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "inspect.yaml", `
type: FanStatus
defs: [a.yaml, b.yaml]
log_level: debug
trace: fan.trace
interactive: false
`)
	cfg, err := LoadConfigFile(path, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "FanStatus", cfg.Type)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Defs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "fan.trace", cfg.Trace)
	assert.False(t, cfg.Interactive)
	assert.False(t, cfg.Simulate)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), DefaultConfig())
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfigFile(writeFile(t, "bad.yaml", "type: [unclosed"), DefaultConfig())
	assert.Error(t, err)
}

func TestApplyFlagsOverridesOnlySetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flagCfg := DefaultConfig()
	var defs listFlag
	fs.StringVar(&flagCfg.Type, "type", flagCfg.Type, "")
	fs.Var(&defs, "defs", "")
	fs.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "")
	fs.BoolVar(&flagCfg.Simulate, "simulate", false, "")
	require.NoError(t, fs.Parse([]string{"-log-level", "warn", "-defs", "x.yaml,y.yaml", "-defs", "z.yaml", "-simulate"}))
	flagCfg.Defs = defs

	fileCfg := DefaultConfig()
	fileCfg.Type = "FanStatus"
	fileCfg.Trace = "file.trace"

	cfg := ApplyFlags(fs, fileCfg, flagCfg)
	assert.Equal(t, "FanStatus", cfg.Type, "unset flag keeps file value")
	assert.Equal(t, "file.trace", cfg.Trace)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"x.yaml", "y.yaml", "z.yaml"}, cfg.Defs)
	assert.True(t, cfg.Simulate)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"describe yaml", func(c *Config) { c.Describe = "yaml" }, false},
		{"describe cbor", func(c *Config) { c.Describe = "cbor" }, false},
		{"describe json", func(c *Config) { c.Describe = "json" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"no type", func(c *Config) { c.Type = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestLoadData(t *testing.T) {
	data, err := LoadData("")
	require.NoError(t, err)
	assert.Nil(t, data)

	path := writeFile(t, "payload.yaml", "aqi: 99\nmode: Idle\npower: false\n")
	data, err = LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, 99, data["aqi"])
	assert.Equal(t, "Idle", data["mode"])
	assert.Equal(t, false, data["power"])
}
