package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
port: 5000
verbose: true
locale: en
storage:
  driver: memory
ai:
  model: gemini-2.5-pro
  timeout: 5s
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("expected port 5000, got %d", cfg.Port)
	}
	if !cfg.Verbose {
		t.Error("expected verbose")
	}
	if cfg.Locale != "en" {
		t.Errorf("expected locale en, got %q", cfg.Locale)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("expected memory driver, got %q", cfg.Storage.Driver)
	}
	if cfg.AI.Model != "gemini-2.5-pro" {
		t.Errorf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.AI.Timeout)
	}
}

func TestLoadFromMissingFileReturnsDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
	if !strings.HasSuffix(cfg.Storage.Path, filepath.Join(DefaultConfigDir, DefaultDBFile)) {
		t.Errorf("unexpected db path %q", cfg.Storage.Path)
	}
	if cfg.AI.Model != DefaultModel || cfg.AI.Timeout != DefaultAITimeout {
		t.Errorf("unexpected AI defaults %+v", cfg.AI)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "port: 5000\nstorage:\n  driver: memory\n")

	t.Setenv("STARJAR_PORT", "6000")
	t.Setenv("STARJAR_STORAGE_DRIVER", "sqlite")
	t.Setenv("STARJAR_DB_PATH", "/tmp/stars.db")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("STARJAR_AI_TIMEOUT", "2s")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Port != 6000 {
		t.Errorf("expected env port 6000, got %d", cfg.Port)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.Path != "/tmp/stars.db" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.AI.APIKey != "secret" {
		t.Errorf("expected api key from env")
	}
	if cfg.AI.Timeout != 2*time.Second {
		t.Errorf("expected 2s, got %s", cfg.AI.Timeout)
	}
}

func TestBadEnvValue(t *testing.T) {
	t.Setenv("STARJAR_PORT", "not-a-number")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "port: [1, 2")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"port zero":      func(c *Config) { c.Port = 0 },
		"port too big":   func(c *Config) { c.Port = 70000 },
		"unknown driver": func(c *Config) { c.Storage.Driver = "redis" },
		"sqlite no path": func(c *Config) { c.Storage.Path = "" },
		"bad locale":     func(c *Config) { c.Locale = "fr" },
		"neg timeout":    func(c *Config) { c.AI.Timeout = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Storage.Path = "/tmp/x.db"
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestServerURL(t *testing.T) {
	cfg := Default()
	if got := cfg.ServerURL(); got != "http://localhost:4100" {
		t.Errorf("unexpected server URL %q", got)
	}
	cfg.Server = "http://kid-tablet:9000"
	if got := cfg.ServerURL(); got != "http://kid-tablet:9000" {
		t.Errorf("unexpected server URL %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := Default()
	cfg.Port = 4200
	cfg.Storage.Driver = DriverMemory
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(dir, DefaultConfigDir, DefaultConfigFile)
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error on saved file: %v", err)
	}
	if loaded.Port != 4200 || loaded.Storage.Driver != DriverMemory {
		t.Errorf("unexpected loaded config %+v", loaded)
	}
}
