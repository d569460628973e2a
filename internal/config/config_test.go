package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configDirEnvKey, t.TempDir())
	t.Setenv(dbEnvKey, "")
	t.Setenv(registryEnvKey, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.DefaultLimit != DefaultSearchLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultSearchLimit, cfg.Search.DefaultLimit)
	}
	if cfg.Analyzer != DefaultAnalyzer {
		t.Fatalf("expected analyzer %q, got %q", DefaultAnalyzer, cfg.Analyzer)
	}
	if diff := cmp.Diff(DefaultIndexedAttributes, cfg.IndexedAttributes); diff != "" {
		t.Fatalf("indexed attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)
	t.Setenv(dbEnvKey, "")
	t.Setenv(registryEnvKey, "")

	content := `
db_path = "/tmp/custom.db"
log_level = "debug"
indexed_attributes = ["Title", "subject", "title"]

[search]
default_limit = 25
`
	if err := os.WriteFile(filepath.Join(dir, DefaultConfigName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Fatalf("expected db path override, got %q", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug, got %q", cfg.LogLevel)
	}
	if cfg.Search.DefaultLimit != 25 {
		t.Fatalf("expected default limit 25, got %d", cfg.Search.DefaultLimit)
	}
	// Lowercased, deduped, sorted.
	want := []string{"subject", "title"}
	if diff := cmp.Diff(want, cfg.IndexedAttributes); diff != "" {
		t.Fatalf("indexed attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)
	t.Setenv(dbEnvKey, "/env/index.db")
	t.Setenv(registryEnvKey, "/env/registry.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/env/index.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.RegistryPath != "/env/registry.json" {
		t.Fatalf("expected env registry path, got %q", cfg.RegistryPath)
	}
}

func TestSetKeyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigName)

	if err := SetKey(path, "search.default_limit", "42"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := SetKey(path, "log_level", "info"); err != nil {
		t.Fatalf("set: %v", err)
	}

	t.Setenv(configDirEnvKey, dir)
	t.Setenv(dbEnvKey, "")
	t.Setenv(registryEnvKey, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.DefaultLimit != 42 {
		t.Fatalf("expected limit 42, got %d", cfg.Search.DefaultLimit)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected log level info, got %q", cfg.LogLevel)
	}
}

func TestSetKeyRejectsUnknownKey(t *testing.T) {
	if err := SetKey(filepath.Join(t.TempDir(), DefaultConfigName), "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestGetAllAllowedKeys(t *testing.T) {
	cfg := Default()
	for _, key := range AllowedKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Fatalf("get %s: %v", key, err)
		}
	}
}
