package config

import (
	"fmt"
	"time"
)

var (
	knownLogFormats = map[string]struct{}{"console": {}, "json": {}}
	knownLogLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
)

// Validate checks the configuration for values the tool cannot run with.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database path is required")
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("config: download_dir is required")
	}
	if c.Provider.Binary == "" {
		return fmt.Errorf("config: provider.binary is required")
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: provider.timeout_seconds must be positive, got %d", c.Provider.TimeoutSeconds)
	}
	if parsed, err := time.ParseDuration(c.DefaultInterval); err != nil {
		return fmt.Errorf("config: default_interval %q: %w", c.DefaultInterval, err)
	} else if parsed <= 0 {
		return fmt.Errorf("config: default_interval must be positive, got %s", c.DefaultInterval)
	}
	if _, ok := knownLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("config: logging.format %q is not one of console, json", c.Logging.Format)
	}
	if _, ok := knownLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("config: logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
