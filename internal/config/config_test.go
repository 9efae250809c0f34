package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Interval() != 24*time.Hour {
		t.Fatalf("Interval = %s", cfg.Interval())
	}
	if cfg.ProviderTimeout() != 600*time.Second {
		t.Fatalf("ProviderTimeout = %s", cfg.ProviderTimeout())
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
database = "` + filepath.Join(dir, "catalog.db") + `"
default_interval = "12h"

[provider]
binary = "/opt/yt-dlp/yt-dlp"

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database != filepath.Join(dir, "catalog.db") {
		t.Fatalf("Database = %s", cfg.Database)
	}
	if cfg.Interval() != 12*time.Hour {
		t.Fatalf("Interval = %s", cfg.Interval())
	}
	if cfg.Provider.Binary != "/opt/yt-dlp/yt-dlp" {
		t.Fatalf("Binary = %s", cfg.Provider.Binary)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Level = %s", cfg.Logging.Level)
	}
	// Untouched fields keep their defaults.
	if cfg.OutputTemplate != Default().OutputTemplate {
		t.Fatalf("OutputTemplate = %s", cfg.OutputTemplate)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"bad interval", `default_interval = "soon"`, "default_interval"},
		{"negative timeout", "[provider]\ntimeout_seconds = -1\n", "timeout_seconds"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad level", "[logging]\nlevel = \"verbose\"\n", "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q error, got %v", tc.want, err)
			}
		})
	}
}

func TestNormalizeExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	cfg := Default()
	cfg.Database = "~/data/catalog.db"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Database != filepath.Join(home, "data", "catalog.db") {
		t.Fatalf("Database = %s", cfg.Database)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Database = filepath.Join(dir, "state", "catalog.db")
	cfg.DownloadDir = filepath.Join(dir, "videos")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, sub := range []string{filepath.Join(dir, "state"), cfg.DownloadDir} {
		info, err := os.Stat(sub)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing directory %s: %v", sub, err)
		}
	}
}

func TestWriteSampleParsesAndRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
