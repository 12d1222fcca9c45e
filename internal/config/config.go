package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where tabmon looks for its config file.
const DefaultConfigPath = "~/.config/tabmon/config.yaml"

// Source names accepted in Config.Source.
const (
	SourceDemo    = "demo"
	SourceBridge  = "bridge"
	SourceCDP     = "cdp"
	SourceFirefox = "firefox"
)

// Config holds all tabmon configuration.
type Config struct {
	Source  string        `yaml:"source"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	CDP     CDPConfig     `yaml:"cdp"`
	Firefox FirefoxConfig `yaml:"firefox"`
	View    ViewConfig    `yaml:"view"`
	Logging LoggingConfig `yaml:"logging"`
}

type FetchConfig struct {
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	DemoFallback   bool `yaml:"demo_fallback"`
}

type BridgeConfig struct {
	Port int `yaml:"port"`
}

type CDPConfig struct {
	URL string `yaml:"url"`
}

type FirefoxConfig struct {
	Profile string `yaml:"profile"`
}

type ViewConfig struct {
	Sort          string `yaml:"sort"`
	GroupByWindow bool   `yaml:"group_by_window"`
}

type LoggingConfig struct {
	Dir string `yaml:"dir"`
}

// Timeout returns the per-query host timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceDemo, SourceBridge, SourceCDP, SourceFirefox:
	default:
		return fmt.Errorf("unknown source %q (want demo, bridge, cdp or firefox)", c.Source)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Bridge.Port < 0 || c.Bridge.Port > 65535 {
		return fmt.Errorf("bridge.port out of range: %d", c.Bridge.Port)
	}
	return nil
}

// Load reads a YAML config file at path and merges it with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadOptional loads path if it exists and returns defaults otherwise.
// An empty path means DefaultConfigPath.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Load(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// ApplyEnv overrides settings from TABMON_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("TABMON_SOURCE"); v != "" {
		c.Source = v
	}
	if v := getenv("TABMON_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TABMON_PORT: %w", err)
		}
		c.Bridge.Port = port
	}
	if v := getenv("TABMON_CDP_URL"); v != "" {
		c.CDP.URL = v
	}
	if v := getenv("TABMON_PROFILE"); v != "" {
		c.Firefox.Profile = v
	}
	if v := getenv("TABMON_LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
