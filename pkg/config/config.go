package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // zones resolve on hosts without a zoneinfo database

	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "codeclock"
	configFile = "config.yaml"

	// HomeEnv overrides the directory holding config, credentials and token.
	HomeEnv = "CODECLOCK_HOME"

	DefaultCalendar = "primary"
	DefaultTimeZone = "America/Denver"
	DefaultTag      = "Coding"
	DefaultColor    = "sage"
)

type Config struct {
	// Calendar is "primary" or the summary of one of the user's calendars.
	Calendar string `yaml:"calendar"`
	// TimeZone is the IANA zone events are written in and days are cut in.
	TimeZone string `yaml:"timezone"`
	// Tag is the event title that marks a coding session.
	Tag string `yaml:"tag"`
	// Color is a palette name or event color ID.
	Color string `yaml:"color"`
}

func Default() *Config {
	return &Config{
		Calendar: DefaultCalendar,
		TimeZone: DefaultTimeZone,
		Tag:      DefaultTag,
		Color:    DefaultColor,
	}
}

// normalize fills zero fields left out of older or partial config files.
func (c *Config) normalize() {
	d := Default()
	if c.Calendar == "" {
		c.Calendar = d.Calendar
	}
	if c.TimeZone == "" {
		c.TimeZone = d.TimeZone
	}
	if c.Tag == "" {
		c.Tag = d.Tag
	}
	if c.Color == "" {
		c.Color = d.Color
	}
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// DefaultLocation returns the DefaultTimeZone zone. The zone database is
// embedded, so the UTC fallback only guards against a corrupted build.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Dir returns the application directory, $CODECLOCK_HOME or ~/.config/codeclock.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
