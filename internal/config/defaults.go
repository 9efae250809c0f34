package config

const (
	defaultDatabase        = "~/.local/share/ytsync/catalog.db"
	defaultDownloadDir     = "~/videos/ytsync"
	defaultOutputTemplate  = "%(extractor)s/%(uploader)s/%(title)s-%(id)s.%(ext)s"
	defaultInterval        = "24h"
	defaultProviderBinary  = "yt-dlp"
	defaultProviderTimeout = 600
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Database:        defaultDatabase,
		DownloadDir:     defaultDownloadDir,
		OutputTemplate:  defaultOutputTemplate,
		DefaultInterval: defaultInterval,
		Provider: Provider{
			Binary:         defaultProviderBinary,
			TimeoutSeconds: defaultProviderTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
