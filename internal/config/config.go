// Package config loads WinTheDay settings from a TOML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bryan-cox/wintheday/internal/store"
	"github.com/bryan-cox/wintheday/internal/suggest"
)

// AppName names the config and data directories.
const AppName = "wintheday"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// FallbackAPIKeyEnv is checked when the configured variable is empty.
const FallbackAPIKeyEnv = "GEMINI_API_KEY"

// Config holds all settings.
type Config struct {
	Store    StoreConfig   `toml:"store"`
	Log      LogConfig     `toml:"log"`
	Suggest  SuggestConfig `toml:"suggest"`
	Warnings []string      `toml:"-"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SuggestConfig configures the suggestion model.
type SuggestConfig struct {
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	APIKeyEnv   string  `toml:"api_key_env"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: store.BackendFile,
			Dir:     DefaultDataDir(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Suggest: SuggestConfig{
			Model:       suggest.DefaultModel,
			Temperature: float64(suggest.DefaultTemperature),
			APIKeyEnv:   "API_KEY",
		},
	}
}

// DefaultPath returns the config file location under XDG_CONFIG_HOME.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName, FileName)
}

// DefaultDataDir returns the data directory under XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "." + AppName
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName)
}

// Load reads the config file at path over the defaults. A missing file is
// not an error. Unknown keys are reported in Config.Warnings.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		for i := range strict.Errors {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown config key: %s", strings.Join(strict.Errors[i].Key(), ".")))
		}
		// Decode again without the strict check to keep the known fields.
		warnings := cfg.Warnings
		cfg = Default()
		cfg.Warnings = warnings
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", store.BackendFile, store.BackendSQLite, c.Store.Backend)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be \"json\" or \"text\", got %q", c.Log.Format)
	}
	if c.Suggest.Temperature < 0 || c.Suggest.Temperature > 2 {
		return fmt.Errorf("suggest.temperature must be between 0 and 2, got %v", c.Suggest.Temperature)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files without overriding
// the existing environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the suggestion service key from the environment.
func (c *Config) APIKey() string {
	if c.Suggest.APIKeyEnv != "" {
		if v := os.Getenv(c.Suggest.APIKeyEnv); v != "" {
			return v
		}
	}
	return os.Getenv(FallbackAPIKeyEnv)
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
