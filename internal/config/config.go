package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultLogLevel     = "warn"
	DefaultSearchLimit  = 10
	DefaultAnalyzer     = "local"
	DefaultDataDirName  = ".inkstone"
	DefaultRegistryName = "registry.json"
	DefaultIndexDBName  = "index.db"
	DefaultConfigName   = ".inkstone.toml"

	configDirEnvKey = "INKSTONE_CONFIG_DIR"
	dbEnvKey        = "INKSTONE_DB"
	registryEnvKey  = "INKSTONE_REGISTRY"
)

// DefaultIndexedAttributes is the allow-list of attribute keys
// materialized into the search index.
var DefaultIndexedAttributes = []string{"author", "title"}

// SearchConfig defines query defaults.
type SearchConfig struct {
	DefaultLimit int `toml:"default_limit"`
}

// Config defines runtime configuration for inkstone.
type Config struct {
	RegistryPath      string       `toml:"registry_path"`
	DBPath            string       `toml:"db_path"`
	LogLevel          string       `toml:"log_level"`
	Analyzer          string       `toml:"analyzer"`
	IndexedAttributes []string     `toml:"indexed_attributes"`
	Search            SearchConfig `toml:"search"`
}

// Default returns default configuration values. Paths are resolved
// lazily by Load because they depend on the home directory.
func Default() Config {
	return Config{
		LogLevel:          DefaultLogLevel,
		Analyzer:          DefaultAnalyzer,
		IndexedAttributes: append([]string(nil), DefaultIndexedAttributes...),
		Search:            SearchConfig{DefaultLimit: DefaultSearchLimit},
	}
}

var allowedKeys = []string{
	"registry_path",
	"db_path",
	"log_level",
	"analyzer",
	"indexed_attributes",
	"search.default_limit",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "registry_path":
		return c.RegistryPath, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "analyzer":
		return c.Analyzer, nil
	case "indexed_attributes":
		return strings.Join(c.IndexedAttributes, ","), nil
	case "search.default_limit":
		return strconv.Itoa(c.Search.DefaultLimit), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Path returns the config file path, honoring the override dir.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, DefaultConfigName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigName), nil
}

// Load reads config from the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if loadErr := loadFileIfExists(path, &cfg); loadErr != nil {
			return nil, loadErr
		}
	}

	dataDir := ""
	if home, homeErr := os.UserHomeDir(); homeErr == nil {
		dataDir = filepath.Join(home, DefaultDataDirName)
	}
	if cfg.RegistryPath == "" && dataDir != "" {
		cfg.RegistryPath = filepath.Join(dataDir, DefaultRegistryName)
	}
	if cfg.DBPath == "" && dataDir != "" {
		cfg.DBPath = filepath.Join(dataDir, DefaultIndexDBName)
	}

	if registry := os.Getenv(registryEnvKey); registry != "" {
		cfg.RegistryPath = registry
	}
	if dbPath := os.Getenv(dbEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}

	cfg.normalize()
	return &cfg, nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "search.default_limit":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "indexed_attributes":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalize() {
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = DefaultSearchLimit
	}
	if strings.TrimSpace(c.Analyzer) == "" {
		c.Analyzer = DefaultAnalyzer
	}
	c.IndexedAttributes = normalizeIndexedAttributes(c.IndexedAttributes)
}

func normalizeIndexedAttributes(rawValues []string) []string {
	if len(rawValues) == 0 {
		return append([]string(nil), DefaultIndexedAttributes...)
	}
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return append([]string(nil), DefaultIndexedAttributes...)
	}
	return out
}
