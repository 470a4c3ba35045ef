// Package config reads the optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors ~/.config/dayflow/config.yaml. Every field is optional.
type Config struct {
	DBPath      string `yaml:"db_path,omitempty"`
	Debug       bool   `yaml:"debug,omitempty"`
	MaxLogFiles *int   `yaml:"max_log_files,omitempty"`
	WeekStart   string `yaml:"week_start,omitempty"` // sunday or monday
}

// DefaultPath returns ~/.config/dayflow/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dayflow", "config.yaml"), nil
}

// Load reads the config at path. A missing file yields an empty Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes c to path, creating the directory if needed.
func Save(path string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.WeekStart) {
	case "", "sunday", "monday":
	default:
		return fmt.Errorf("week_start must be sunday or monday, got %q", c.WeekStart)
	}
	if c.MaxLogFiles != nil && *c.MaxLogFiles < 0 {
		return fmt.Errorf("max_log_files must not be negative")
	}
	return nil
}

// FirstWeekday is the day week views start on. Sunday unless configured.
func (c *Config) FirstWeekday() time.Weekday {
	if strings.EqualFold(c.WeekStart, "monday") {
		return time.Monday
	}
	return time.Sunday
}
