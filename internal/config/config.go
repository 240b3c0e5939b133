// Package config loads the starjar configuration file stored at
// ~/.starjar/config.yaml, with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultConfigDir is the directory under the user's home for starjar state.
const DefaultConfigDir = ".starjar"

// DefaultConfigFile is the config file name within the config directory.
const DefaultConfigFile = "config.yaml"

// DefaultDBFile is the SQLite file name within the config directory.
const DefaultDBFile = "starjar.db"

const (
	DefaultPort      = 4100
	DefaultLocale    = "ar"
	DefaultModel     = "gemini-2.5-flash"
	DefaultAITimeout = 30 * time.Second
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// StorageConfig selects where stars, rewards and the journal are kept.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STARJAR_STORAGE_DRIVER"`
	Path   string `yaml:"path" env:"STARJAR_DB_PATH"`
}

// AIConfig configures the assistant. An empty APIKey disables it.
type AIConfig struct {
	APIKey  string        `yaml:"api_key,omitempty" env:"GEMINI_API_KEY"`
	Model   string        `yaml:"model" env:"STARJAR_AI_MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"STARJAR_AI_TIMEOUT"`
}

// Config represents the contents of ~/.starjar/config.yaml.
type Config struct {
	Port    int    `yaml:"port" env:"STARJAR_PORT"`
	Verbose bool   `yaml:"verbose" env:"STARJAR_VERBOSE"`
	Locale  string `yaml:"locale" env:"STARJAR_LOCALE"`
	// Server is the base URL the status/reset/seed commands talk to.
	Server  string        `yaml:"server,omitempty" env:"STARJAR_SERVER"`
	Storage StorageConfig `yaml:"storage"`
	AI      AIConfig      `yaml:"ai"`
}

// Dir returns the path to the config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{
		Port:    DefaultPort,
		Locale:  DefaultLocale,
		Storage: StorageConfig{Driver: DriverSQLite},
		AI:      AIConfig{Model: DefaultModel, Timeout: DefaultAITimeout},
	}
	if dir, err := Dir(); err == nil {
		cfg.Storage.Path = filepath.Join(dir, DefaultDBFile)
	}
	return cfg
}

// Load reads ~/.starjar/config.yaml and applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and enums.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Locale {
	case "ar", "en":
	default:
		return fmt.Errorf("unsupported locale %q", c.Locale)
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("invalid ai.timeout %s", c.AI.Timeout)
	}
	return nil
}

// ServerURL is the URL of the local server, defaulting to localhost:Port.
func (c *Config) ServerURL() string {
	if c.Server != "" {
		return c.Server
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// Save writes the config to ~/.starjar/config.yaml.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg as YAML to path, creating its directory.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
