// Package config provides configuration loading and structs for the oracle server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Scryfall ScryfallConfig `yaml:"scryfall"`
	Search   SearchConfig   `yaml:"search"`
	Storage  StorageConfig  `yaml:"storage"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatasetConfig holds dataset artifact settings. Artifacts (card corpus and
// embedding matrix) are downloaded from BaseURL into CacheDir when missing.
type DatasetConfig struct {
	CacheDir string `yaml:"cache_dir"`
	BaseURL  string `yaml:"base_url"`
	// WatchReload rebuilds the in-memory snapshot when dataset files in
	// CacheDir are replaced. Defaults to true when unset.
	WatchReload *bool `yaml:"watch_reload"`
}

// WatchReloadOrDefault returns whether to watch dataset files; defaults to true.
func (d *DatasetConfig) WatchReloadOrDefault() bool {
	if d.WatchReload != nil {
		return *d.WatchReload
	}
	return true
}

// ScryfallConfig holds name resolution service settings.
type ScryfallConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
	// CacheTTLHours is how long cached resolutions stay valid.
	CacheTTLHours int `yaml:"cache_ttl_hours"`
}

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	// TopKCandidates is the over-fetch size for the vector query. It must exceed
	// the largest result limit because post-filtering removes entries.
	TopKCandidates int     `yaml:"top_k_candidates"`
	MinScore       float64 `yaml:"min_score"`
	DefaultLimit   int     `yaml:"default_limit"`
	MaxLimit       int     `yaml:"max_limit"`
}

// StorageConfig holds paths for the resolution cache and suggest index.
type StorageConfig struct {
	ResolutionsDBPath string `yaml:"resolutions_db_path"`
	SuggestIndexPath  string `yaml:"suggest_index_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Dataset.CacheDir = expandPath(cfg.Dataset.CacheDir, configDir)
	cfg.Storage.ResolutionsDBPath = expandPath(cfg.Storage.ResolutionsDBPath, configDir)
	cfg.Storage.SuggestIndexPath = expandPath(cfg.Storage.SuggestIndexPath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to
// configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
