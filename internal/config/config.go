// Package config provides configuration loading for the n3logic tools.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// FileName is the project-level config file looked up in the working directory
const FileName = "n3logic.yaml"

// Config represents the complete n3logic configuration
type Config struct {
	Parser ParserConfig `yaml:"parser"`
	Log    LogConfig    `yaml:"log"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ParserConfig configures parse calls
type ParserConfig struct {
	// Debug enables parser trace logging
	Debug bool `yaml:"debug"`
}

// LogConfig configures the process logger
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// CacheConfig configures the parse cache
type CacheConfig struct {
	// Enabled turns the badger-backed parse cache on
	Enabled bool `yaml:"enabled"`
	// Dir is the badger directory (empty = in-memory)
	Dir string `yaml:"dir"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WatchConfig configures the directory watcher
type WatchConfig struct {
	// Debounce is the quiet period before a changed file is re-parsed
	Debounce time.Duration `yaml:"debounce"`
	// Extensions lists the file extensions that are parsed
	Extensions []string `yaml:"extensions"`
	// Ignore lists doublestar patterns of files that are never parsed
	Ignore []string `yaml:"ignore,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     "",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Watch: WatchConfig{
			Debounce:   200 * time.Millisecond,
			Extensions: []string{".n3"},
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	for _, ext := range c.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("watch.extensions entry %q must start with a dot", ext)
		}
	}
	for _, pattern := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("watch.ignore entry %q is not a valid pattern", pattern)
		}
	}
	return nil
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", level)
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load returns the configuration at path, or the project config in the
// working directory when path is empty. Defaults are used when neither
// exists. The result is validated.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	config, err := LoadFromFile(path)
	switch {
	case err == nil:
		logger.Debug("Loaded config", slog.String("path", path))
	case !explicit && errors.Is(err, os.ErrNotExist):
		logger.Debug("No project config found")
		config = DefaultConfig()
	default:
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Parser.Debug {
		c.Parser.Debug = true
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}

	if other.Cache.Enabled {
		c.Cache.Enabled = true
	}
	if other.Cache.Dir != "" {
		c.Cache.Dir = other.Cache.Dir
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.ReadTimeout != 0 {
		c.Server.ReadTimeout = other.Server.ReadTimeout
	}
	if other.Server.WriteTimeout != 0 {
		c.Server.WriteTimeout = other.Server.WriteTimeout
	}

	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Extensions) > 0 {
		c.Watch.Extensions = other.Watch.Extensions
	}
	if len(other.Watch.Ignore) > 0 {
		c.Watch.Ignore = other.Watch.Ignore
	}
}
