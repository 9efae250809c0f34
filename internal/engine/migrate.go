package engine

import (
	"context"

	"github.com/yuri-sevatz/youtube-sync/internal/catalog"
)

// Migrate brings the catalog schema up to the current generation and, when
// the provider version has changed since the last run, refreshes source match
// fingerprints. A provider that cannot report its version only skips the
// fingerprint refresh; read-only use keeps working without the tool installed.
func (e *Engine) Migrate(ctx context.Context) (*catalog.MigrationResult, error) {
	version, err := e.client.Version(ctx)
	if err != nil {
		e.logger.Warn("provider version unavailable, skipping fingerprint refresh", "error", err)
		version = ""
	}

	result, err := e.store.Migrate(ctx, e.resolver, version)
	if err != nil {
		return nil, err
	}
	if result.UpgradedFrom != 0 {
		e.logger.Info("catalog schema upgraded", "from", result.UpgradedFrom)
	}
	if result.FingerprintsRefreshed > 0 {
		e.logger.Info("fingerprints refreshed", "count", result.FingerprintsRefreshed, "provider_version", version)
	}
	for _, url := range result.Unresolved {
		e.logger.Warn("source no longer recognized by provider, identity kept", "url", url)
	}
	return result, nil
}
