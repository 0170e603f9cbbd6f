package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{".n3"}, cfg.Watch.Extensions)
	assert.False(t, cfg.Cache.Enabled)
	assert.False(t, cfg.Parser.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "upper case level", modify: func(c *Config) { c.Log.Level = "DEBUG" }},
		{name: "unknown level", modify: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "missing addr", modify: func(c *Config) { c.Server.Addr = "" }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Server.ReadTimeout = -time.Second }, wantErr: true},
		{name: "negative debounce", modify: func(c *Config) { c.Watch.Debounce = -time.Millisecond }, wantErr: true},
		{name: "extension without dot", modify: func(c *Config) { c.Watch.Extensions = []string{"n3"} }, wantErr: true},
		{name: "ignore pattern", modify: func(c *Config) { c.Watch.Ignore = []string{"drafts/**"} }},
		{name: "bad ignore pattern", modify: func(c *Config) { c.Watch.Ignore = []string{"drafts/[a"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `
parser:
  debug: true
log:
  level: debug
cache:
  enabled: true
  dir: /tmp/n3cache
server:
  addr: 127.0.0.1:9000
  read_timeout: 3s
watch:
  debounce: 50ms
  extensions: [".n3", ".n3logic"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Parser.Debug)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/n3cache", cfg.Cache.Dir)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	// Unset values keep their defaults
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{".n3", ".n3logic"}, cfg.Watch.Extensions)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), logger)
	assert.Error(t, err, "an explicit path must exist")

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0644))
	_, err = Load(path, logger)
	assert.ErrorContains(t, err, "invalid config")

	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0644))
	cfg, err := Load(path, logger)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "no project config falls back to defaults")

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("log:\n  level: warn\n"), 0644))
	cfg, err = Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Watch.Debounce = time.Second
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge(nil)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg.Merge(&Config{
		Parser: ParserConfig{Debug: true},
		Cache:  CacheConfig{Dir: "/var/cache/n3"},
		Server: ServerConfig{Addr: ":7000"},
		Watch:  WatchConfig{Extensions: []string{".rules"}},
	})

	assert.True(t, cfg.Parser.Debug)
	assert.Equal(t, "info", cfg.Log.Level, "empty level must not override")
	assert.Equal(t, "/var/cache/n3", cfg.Cache.Dir)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{".rules"}, cfg.Watch.Extensions)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
