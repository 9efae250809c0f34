// Package config loads and validates the TOML configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Config is the root configuration document.
type Config struct {
	// Database is the catalog SQLite file location.
	Database string `toml:"database"`
	// DownloadDir is where downloads land.
	DownloadDir string `toml:"download_dir"`
	// OutputTemplate is the provider's file naming template.
	OutputTemplate string `toml:"output_template"`
	// DefaultInterval is the refresh interval for new sources, in Go
	// duration syntax.
	DefaultInterval string `toml:"default_interval"`

	Provider Provider `toml:"provider"`
	Logging  Logging  `toml:"logging"`
}

// Provider configures the yt-dlp subprocess client.
type Provider struct {
	Binary         string   `toml:"binary"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	ExtraArgs      []string `toml:"extra_args"`
}

// Logging configures log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join("~", ".config", "ytsync", "config.toml")
}

// Load reads the config at path, overlaying it on defaults. An empty path
// means the default location; a missing file at the default location is fine
// and yields defaults, while a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	resolved, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			if err := cfg.Normalize(); err != nil {
				return nil, err
			}
			return &cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Interval returns the parsed default refresh interval. Call Validate first.
func (c *Config) Interval() time.Duration {
	parsed, err := time.ParseDuration(c.DefaultInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return parsed
}

// ProviderTimeout returns the subprocess timeout.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.Provider.TimeoutSeconds) * time.Second
}

// Normalize expands home-relative paths in place.
func (c *Config) Normalize() error {
	for _, field := range []*string{&c.Database, &c.DownloadDir} {
		expanded, err := expandHome(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

// EnsureDirectories creates the directories the tool writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Database), c.DownloadDir}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	resolved, err := expandHome(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config file already exists: %s", resolved)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("inspect %s: %w", resolved, err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
