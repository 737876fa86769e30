package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"lightning bolt", "-min-score", "0.5"},
			expected: []string{"-min-score", "0.5", "lightning bolt"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-min-score", "0.5", "lightning bolt"},
			expected: []string{"-min-score", "0.5", "lightning bolt"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"lightning bolt"},
			expected: []string{"lightning bolt"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"sol", "ring", "-limit", "5"},
			expected: []string{"-limit", "5", "sol", "ring"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"counterspell"}, "counterspell"},
		{"multiple words", []string{"lightning", "bolt"}, "lightning bolt"},
		{"single quoted phrase", []string{"lightning bolt"}, "lightning bolt"},
		{"trims whitespace", []string{"  shock  "}, "shock"},
		{"empty", []string{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildSearchQuery(tt.args); got != tt.expected {
				t.Errorf("buildSearchQuery() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseColors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{"empty means all", "", nil},
		{"none means nothing", "none", []string{}},
		{"single color", "R", []string{"R"}},
		{"lowercase normalized", "r,g", []string{"R", "G"}},
		{"colorless marker", "C", []string{"C"}},
		{"spaces tolerated", "W, U ,B", []string{"W", "U", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseColors(tt.raw)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("parseColors(%q) = %#v, want %#v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_CwdFallback(t *testing.T) {
	dir := t.TempDir()
	configYAML := []byte("server:\n  port: 9999\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), configYAML, 0o644); err != nil {
		t.Fatal(err)
	}
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(oldWd)
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999 from cwd config", cfg.Server.Port)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("resolved path = %s", path)
	}
}
