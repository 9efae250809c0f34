package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/yuri-sevatz/youtube-sync/internal/identity"
)

// IdentityScheme supplies the identity computations migrations need. The
// resolver satisfies it.
type IdentityScheme interface {
	// CanonicalURL rebuilds a source URL from an identity pair.
	CanonicalURL(id identity.Identity) (string, bool)
	// KeyForName maps a retired public extractor name to an internal key.
	KeyForName(name string) (string, bool)
	// Refingerprint recomputes a match fingerprint for a stored URL.
	Refingerprint(url string) (string, bool)
}

// MigrationResult summarizes what Migrate changed.
type MigrationResult struct {
	// UpgradedFrom is the schema generation the store was upgraded from,
	// or 0 when the store was already current.
	UpgradedFrom int
	// FingerprintsRefreshed counts sources re-fingerprinted after a
	// provider upgrade.
	FingerprintsRefreshed int
	// Unresolved lists source URLs no current extractor accepts. Those
	// sources keep their original identity.
	Unresolved []string
}

// Migrate brings the store up to the current schema generation and, when
// providerVersion differs from the recorded one, recomputes every source's
// match fingerprint in a single transaction. An unrecognized generation
// refuses to run with ErrMigrationUnsupported; pass an empty providerVersion
// to skip the fingerprint refresh.
func (s *Store) Migrate(ctx context.Context, scheme IdentityScheme, providerVersion string) (*MigrationResult, error) {
	result := &MigrationResult{}

	raw, ok, err := s.GetConfig(ctx, configVersionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: schema generation missing", ErrMigrationUnsupported)
	}
	generation, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable schema generation %q", ErrMigrationUnsupported, raw)
	}

	switch {
	case generation == schemaGeneration:
	case generation == 1:
		if err := s.upgradeGenerationOne(ctx, scheme); err != nil {
			return nil, err
		}
		result.UpgradedFrom = 1
	default:
		return nil, fmt.Errorf("%w: store has generation %d, this build expects %d",
			ErrMigrationUnsupported, generation, schemaGeneration)
	}

	if providerVersion == "" {
		return result, nil
	}
	recorded, _, err := s.GetConfig(ctx, configProviderKey)
	if err != nil {
		return nil, err
	}
	if recorded == providerVersion {
		return result, nil
	}
	if err := s.refreshFingerprints(ctx, scheme, providerVersion, result); err != nil {
		return nil, err
	}
	return result, nil
}

// upgradeGenerationOne rebuilds what generation 1 never stored: each source's
// canonical URL and match fingerprint, and internal extractor keys in place
// of retired public names. It refuses to run if any row cannot be re-derived
// through the current scheme.
func (s *Store) upgradeGenerationOne(ctx context.Context, scheme IdentityScheme) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureSourceColumns(ctx, tx); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT e.id, e.kind, e.extractor_key, e.extractor_data FROM entity e ORDER BY e.id`)
		if err != nil {
			return fmt.Errorf("list entities: %w", err)
		}
		type entityRow struct {
			id   int64
			kind Kind
			key  string
			data string
		}
		var entities []entityRow
		for rows.Next() {
			var row entityRow
			if err := rows.Scan(&row.id, &row.kind, &row.key, &row.data); err != nil {
				rows.Close()
				return fmt.Errorf("scan entity: %w", err)
			}
			entities = append(entities, row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, row := range entities {
			key := row.key
			if mapped, ok := scheme.KeyForName(key); ok {
				key = mapped
			}
			if key != row.key {
				if _, err := tx.ExecContext(ctx,
					`UPDATE entity SET extractor_key = ? WHERE id = ?`, key, row.id); err != nil {
					return fmt.Errorf("rekey entity %d: %w", row.id, err)
				}
			}
			if row.kind != KindSource {
				continue
			}
			url, ok := scheme.CanonicalURL(identity.Identity{Key: key, Data: row.data})
			if !ok {
				return fmt.Errorf("%w: no converter rebuilds a url for %s %s",
					ErrMigrationUnsupported, key, row.data)
			}
			fingerprint, ok := scheme.Refingerprint(url)
			if !ok {
				return fmt.Errorf("%w: no extractor accepts rebuilt url %s",
					ErrMigrationUnsupported, url)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE source SET url = ?, match_fingerprint = ? WHERE entity_id = ?`,
				url, fingerprint, row.id); err != nil {
				return fmt.Errorf("rewrite source %d: %w", row.id, err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE config SET value = ? WHERE id = ?`,
			strconv.Itoa(schemaGeneration), configVersionKey); err != nil {
			return fmt.Errorf("bump schema generation: %w", err)
		}
		return nil
	})
}

// refreshFingerprints recomputes every source's match fingerprint against the
// current provider rules. A source whose URL no longer matches any rule keeps
// its original identity; that is the fail-safe side of drift detection.
func (s *Store) refreshFingerprints(ctx context.Context, scheme IdentityScheme, providerVersion string, result *MigrationResult) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT entity_id, url, match_fingerprint FROM source ORDER BY entity_id`)
		if err != nil {
			return fmt.Errorf("list source urls: %w", err)
		}
		type sourceRow struct {
			id          int64
			url         string
			fingerprint string
		}
		var sources []sourceRow
		for rows.Next() {
			var row sourceRow
			if err := rows.Scan(&row.id, &row.url, &row.fingerprint); err != nil {
				rows.Close()
				return fmt.Errorf("scan source url: %w", err)
			}
			sources = append(sources, row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, row := range sources {
			fingerprint, ok := scheme.Refingerprint(row.url)
			if !ok {
				result.Unresolved = append(result.Unresolved, row.url)
				continue
			}
			if fingerprint == row.fingerprint {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE source SET match_fingerprint = ? WHERE entity_id = ?`,
				fingerprint, row.id); err != nil {
				return fmt.Errorf("refresh fingerprint %d: %w", row.id, err)
			}
			result.FingerprintsRefreshed++
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config (id, value) VALUES (?, ?)
             ON CONFLICT (id) DO UPDATE SET value = excluded.value`,
			configProviderKey, providerVersion); err != nil {
			return fmt.Errorf("record provider version: %w", err)
		}
		return nil
	})
}

func ensureSourceColumns(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `PRAGMA table_info(source)`)
	if err != nil {
		return fmt.Errorf("source table info: %w", err)
	}
	present := map[string]bool{}
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan source table info: %w", err)
		}
		present[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if !present["url"] {
		if _, err := tx.ExecContext(ctx,
			`ALTER TABLE source ADD COLUMN url TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add url column: %w", err)
		}
	}
	if !present["match_fingerprint"] {
		if _, err := tx.ExecContext(ctx,
			`ALTER TABLE source ADD COLUMN match_fingerprint TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add match_fingerprint column: %w", err)
		}
	}
	return nil
}
