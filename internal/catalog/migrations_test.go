package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/yuri-sevatz/youtube-sync/internal/converter"
	"github.com/yuri-sevatz/youtube-sync/internal/identity"
	"github.com/yuri-sevatz/youtube-sync/internal/provider"
)

func newTestScheme() IdentityScheme {
	return identity.NewResolver(provider.DefaultExtractors(), converter.Builtin())
}

func TestMigrateCurrentGenerationIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.Migrate(ctx, newTestScheme(), "")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if result.UpgradedFrom != 0 || result.FingerprintsRefreshed != 0 || len(result.Unresolved) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMigrateRefusesUnknownGeneration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetConfig(ctx, "version", "3"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if _, err := store.Migrate(ctx, newTestScheme(), ""); !errors.Is(err, ErrMigrationUnsupported) {
		t.Fatalf("expected ErrMigrationUnsupported, got %v", err)
	}

	if err := store.SetConfig(ctx, "version", "not-a-number"); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	if _, err := store.Migrate(ctx, newTestScheme(), ""); !errors.Is(err, ErrMigrationUnsupported) {
		t.Fatalf("expected ErrMigrationUnsupported, got %v", err)
	}
}

func TestMigrateUpgradesGenerationOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	writeLegacyCatalog(t, path)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open legacy store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	result, err := store.Migrate(ctx, newTestScheme(), "2026.01.01")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if result.UpgradedFrom != 1 {
		t.Fatalf("UpgradedFrom = %d, want 1", result.UpgradedFrom)
	}

	// Public extractor names become internal keys and the source gets its
	// canonical URL and fingerprint rebuilt.
	src, err := store.SourceByIdentity(ctx, identity.Identity{Key: "YoutubeUser", Data: "someuser"})
	if err != nil {
		t.Fatalf("SourceByIdentity: %v", err)
	}
	if src == nil {
		t.Fatal("upgraded source not found under internal key")
	}
	if src.URL != "https://www.youtube.com/user/someuser" {
		t.Fatalf("URL = %s", src.URL)
	}
	if src.MatchFingerprint != `["user","someuser"]` {
		t.Fatalf("fingerprint = %s", src.MatchFingerprint)
	}
	video, err := store.VideoByIdentity(ctx, identity.Identity{Key: "Youtube", Data: "dQw4w9WgXcQ"})
	if err != nil || video == nil {
		t.Fatalf("VideoByIdentity: %+v, %v", video, err)
	}

	generation, ok, err := store.GetConfig(ctx, "version")
	if err != nil || !ok || generation != "2" {
		t.Fatalf("generation = %q ok=%v err=%v", generation, ok, err)
	}
	recorded, ok, err := store.GetConfig(ctx, "ytdl_version")
	if err != nil || !ok || recorded != "2026.01.01" {
		t.Fatalf("ytdl_version = %q ok=%v err=%v", recorded, ok, err)
	}

	// A second run with the same provider version changes nothing.
	again, err := store.Migrate(ctx, newTestScheme(), "2026.01.01")
	if err != nil {
		t.Fatalf("Migrate again: %v", err)
	}
	if again.UpgradedFrom != 0 || again.FingerprintsRefreshed != 0 {
		t.Fatalf("second migrate not idempotent: %+v", again)
	}
}

func TestMigrateProviderUpgradeRefreshesFingerprints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	stale := &Source{
		Identity:         identity.Identity{Key: "YoutubeUser", Data: "someuser"},
		Allow:            true,
		URL:              "https://www.youtube.com/user/someuser",
		MatchFingerprint: `["stale"]`,
		NextDue:          time.Now().UTC(),
		RefreshInterval:  time.Hour,
	}
	unresolved := &Source{
		Identity:         identity.Identity{Key: "RetiredSite", Data: "whatever"},
		Allow:            true,
		URL:              "https://retired.example.com/whatever",
		MatchFingerprint: `["old"]`,
		NextDue:          time.Now().UTC(),
		RefreshInterval:  time.Hour,
	}
	for _, src := range []*Source{stale, unresolved} {
		if err := store.AddSource(ctx, src); err != nil {
			t.Fatalf("AddSource: %v", err)
		}
	}

	result, err := store.Migrate(ctx, newTestScheme(), "2026.02.02")
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if result.FingerprintsRefreshed != 1 {
		t.Fatalf("FingerprintsRefreshed = %d, want 1", result.FingerprintsRefreshed)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0] != unresolved.URL {
		t.Fatalf("Unresolved = %v", result.Unresolved)
	}

	refreshed, err := store.SourceByIdentity(ctx, stale.Identity)
	if err != nil || refreshed == nil {
		t.Fatalf("SourceByIdentity: %v", err)
	}
	if refreshed.MatchFingerprint != `["user","someuser"]` {
		t.Fatalf("fingerprint = %s", refreshed.MatchFingerprint)
	}

	// Unrecognized sources keep their identity untouched.
	kept, err := store.SourceByIdentity(ctx, unresolved.Identity)
	if err != nil || kept == nil {
		t.Fatalf("SourceByIdentity: %v", err)
	}
	if kept.MatchFingerprint != `["old"]` {
		t.Fatalf("unresolved fingerprint changed: %s", kept.MatchFingerprint)
	}

	// Same version again: nothing to do.
	again, err := store.Migrate(ctx, newTestScheme(), "2026.02.02")
	if err != nil {
		t.Fatalf("Migrate again: %v", err)
	}
	if again.FingerprintsRefreshed != 0 || len(again.Unresolved) != 0 {
		t.Fatalf("second migrate not idempotent: %+v", again)
	}
}

// writeLegacyCatalog lays down a generation-1 database: no config version
// row, no url or fingerprint columns, entities keyed by public extractor
// names.
func writeLegacyCatalog(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE entity (
            id             INTEGER PRIMARY KEY AUTOINCREMENT,
            kind           TEXT    NOT NULL CHECK (kind IN ('source', 'video')),
            extractor_key  TEXT    NOT NULL,
            extractor_data TEXT    NOT NULL,
            allow          INTEGER NOT NULL DEFAULT 1,
            last_fetched   TEXT,
            UNIQUE (extractor_key, extractor_data, kind)
        )`,
		`CREATE TABLE source (
            entity_id       INTEGER PRIMARY KEY REFERENCES entity (id) ON DELETE CASCADE,
            next_due        TEXT    NOT NULL,
            refresh_seconds INTEGER NOT NULL
        )`,
		`CREATE TABLE video (
            entity_id INTEGER PRIMARY KEY REFERENCES entity (id) ON DELETE CASCADE
        )`,
		`CREATE TABLE content (
            source_id INTEGER NOT NULL REFERENCES source (entity_id) ON DELETE CASCADE,
            video_id  INTEGER NOT NULL REFERENCES video (entity_id) ON DELETE CASCADE,
            PRIMARY KEY (source_id, video_id)
        )`,
		`CREATE TABLE config (id TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`INSERT INTO entity (id, kind, extractor_key, extractor_data) VALUES
            (1, 'source', 'youtube:user', 'someuser'),
            (2, 'video', 'youtube', 'dQw4w9WgXcQ')`,
		`INSERT INTO source (entity_id, next_due, refresh_seconds) VALUES
            (1, '2026-01-01T00:00:00Z', 86400)`,
		`INSERT INTO video (entity_id) VALUES (2)`,
		`INSERT INTO content (source_id, video_id) VALUES (1, 2)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("prepare legacy schema: %v", err)
		}
	}
}
