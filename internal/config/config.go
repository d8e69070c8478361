package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StorageSQLite = "sqlite"
	StorageJSON   = "json"
)

// Config holds all foodtracker configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Logging LoggingConfig `toml:"logging"`
	Report  ReportConfig  `toml:"report"`
}

// GeneralConfig selects where state lives and which calendar day is today.
type GeneralConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	Storage  string `toml:"storage"`
	Timezone string `toml:"timezone"`
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ReportConfig holds export defaults.
type ReportConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Storage:  StorageSQLite,
			Timezone: "Local",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "foodtracker")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "foodtracker")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (default location when empty), then
// applies .env and environment overrides.
func Load(path string) (Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ReadFile reads only the config file, returning defaults if it doesn't
// exist.
func ReadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path (default location when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// applyEnv loads ./.env when present; FOODTRACKER_* variables win over the
// file.
// applyEnv overlays FOODTRACKER_* values. A non-empty process variable wins
// over the same key in ./.env.
func applyEnv(cfg *Config) error {
	dotenv, err := godotenv.Read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if v := lookup("FOODTRACKER_DB"); v != "" {
		cfg.General.DBPath = v
	}
	if v := lookup("FOODTRACKER_STORAGE"); v != "" {
		cfg.General.Storage = v
	}
	if v := lookup("FOODTRACKER_TZ"); v != "" {
		cfg.General.Timezone = v
	}
	if v := lookup("FOODTRACKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func (c Config) Validate() error {
	switch c.General.Storage {
	case StorageSQLite, StorageJSON:
	default:
		return fmt.Errorf("invalid storage %q (expected %s or %s)", c.General.Storage, StorageSQLite, StorageJSON)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

// Location resolves the configured time zone used to decide the calendar day.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.General.Timezone)
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{"general.db_path", "general.storage", "general.timezone", "logging.level", "logging.format", "report.dir"}
}

func (c Config) Get(key string) (string, error) {
	switch key {
	case "general.db_path":
		return c.General.DBPath, nil
	case "general.storage":
		return c.General.Storage, nil
	case "general.timezone":
		return c.General.Timezone, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "report.dir":
		return c.Report.Dir, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "general.db_path":
		c.General.DBPath = value
	case "general.storage":
		c.General.Storage = strings.ToLower(value)
	case "general.timezone":
		c.General.Timezone = value
	case "logging.level":
		c.Logging.Level = strings.ToLower(value)
	case "logging.format":
		c.Logging.Format = strings.ToLower(value)
	case "report.dir":
		c.Report.Dir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return c.Validate()
}
