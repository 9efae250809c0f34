package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yuri-sevatz/youtube-sync/internal/identity"
)

const sourceColumns = `e.id, e.extractor_key, e.extractor_data, e.allow, e.last_fetched,
    s.url, s.match_fingerprint, s.next_due, s.refresh_seconds`

// AddSource inserts a new source. The whole insert is one transaction; a
// uniqueness violation on the identity triple rolls back and reports
// ErrDuplicateSource.
func (s *Store) AddSource(ctx context.Context, src *Source) error {
	if src == nil {
		return errors.New("source is nil")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO entity (kind, extractor_key, extractor_data, allow, last_fetched)
             VALUES (?, ?, ?, ?, ?)`,
			KindSource, src.Identity.Key, src.Identity.Data, boolToInt(src.Allow), nullableTime(src.LastFetched),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateSource, src.Identity)
			}
			return fmt.Errorf("insert source entity: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO source (entity_id, url, match_fingerprint, next_due, refresh_seconds)
             VALUES (?, ?, ?, ?, ?)`,
			id, src.URL, src.MatchFingerprint, formatTime(src.NextDue), int64(src.RefreshInterval/time.Second),
		); err != nil {
			return fmt.Errorf("insert source: %w", err)
		}
		src.ID = id
		return nil
	})
}

// SourceByMatch locates a source by extractor key and match fingerprint.
// Returns nil when no source matches.
func (s *Store) SourceByMatch(ctx context.Context, key, fingerprint string) (*Source, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+`
         FROM entity e JOIN source s ON s.entity_id = e.id
         WHERE e.extractor_key = ? AND s.match_fingerprint = ?`,
		key, fingerprint,
	)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("source by match: %w", err)
	}
	return src, nil
}

// SourceByIdentity locates a source by its identity pair. Returns nil when no
// source matches.
func (s *Store) SourceByIdentity(ctx context.Context, id identity.Identity) (*Source, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sourceColumns+`
         FROM entity e JOIN source s ON s.entity_id = e.id
         WHERE e.extractor_key = ? AND e.extractor_data = ?`,
		id.Key, id.Data,
	)
	src, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("source by identity: %w", err)
	}
	return src, nil
}

// ListSources returns every source ordered by id, with content-graph
// aggregates (saved, missing, total) attached.
func (s *Store) ListSources(ctx context.Context) ([]*Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sourceColumns+`,
            COUNT(c.video_id),
            COALESCE(SUM(CASE WHEN ve.last_fetched IS NOT NULL THEN 1 ELSE 0 END), 0)
         FROM entity e
         JOIN source s ON s.entity_id = e.id
         LEFT JOIN content c ON c.source_id = s.entity_id
         LEFT JOIN entity ve ON ve.id = c.video_id
         GROUP BY e.id
         ORDER BY e.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		src, err := scanSourceWithTotals(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// RemoveSource deletes a source and, in the same transaction, every video
// whose only remaining reference was this source.
func (s *Store) RemoveSource(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Reference-count check: a video survives while any other source
		// still links to it.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM entity WHERE id IN (
                SELECT c.video_id FROM content c
                WHERE c.source_id = ?
                  AND NOT EXISTS (
                    SELECT 1 FROM content o
                    WHERE o.video_id = c.video_id AND o.source_id <> ?
                  )
             )`,
			id, id,
		); err != nil {
			return fmt.Errorf("delete orphaned videos: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM entity WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AdvanceSource records a completed sync pass: last_fetched and the next due
// time move forward together.
func (s *Store) AdvanceSource(ctx context.Context, id int64, fetched, nextDue time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE entity SET last_fetched = ? WHERE id = ?`,
			formatTime(fetched), id,
		); err != nil {
			return fmt.Errorf("advance entity: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE source SET next_due = ? WHERE entity_id = ?`,
			formatTime(nextDue), id,
		); err != nil {
			return fmt.Errorf("advance source: %w", err)
		}
		return nil
	})
}

// UpdateSourceFingerprint rewrites a source's match fingerprint after a
// provider upgrade.
func (s *Store) UpdateSourceFingerprint(ctx context.Context, id int64, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE source SET match_fingerprint = ? WHERE entity_id = ?`,
		fingerprint, id,
	); err != nil {
		return fmt.Errorf("update fingerprint: %w", err)
	}
	return nil
}

// ToggleByIdentity flips allow on every entity matching the identity pair.
// Kinds are disjoint, so at most one source and one video row change.
func (s *Store) ToggleByIdentity(ctx context.Context, id identity.Identity, allow bool) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE entity SET allow = ? WHERE extractor_key = ? AND extractor_data = ?`,
		boolToInt(allow), id.Key, id.Data,
	)
	if err != nil {
		return 0, fmt.Errorf("toggle entities: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func scanSource(scanner interface{ Scan(dest ...any) error }) (*Source, error) {
	var (
		src        Source
		allow      int64
		fetchedRaw sql.NullString
		nextDueRaw string
		refresh    int64
	)
	if err := scanner.Scan(
		&src.ID, &src.Identity.Key, &src.Identity.Data, &allow, &fetchedRaw,
		&src.URL, &src.MatchFingerprint, &nextDueRaw, &refresh,
	); err != nil {
		return nil, err
	}
	finishSource(&src, allow, fetchedRaw, nextDueRaw, refresh)
	return &src, nil
}

func scanSourceWithTotals(scanner interface{ Scan(dest ...any) error }) (*Source, error) {
	var (
		src        Source
		allow      int64
		fetchedRaw sql.NullString
		nextDueRaw string
		refresh    int64
	)
	if err := scanner.Scan(
		&src.ID, &src.Identity.Key, &src.Identity.Data, &allow, &fetchedRaw,
		&src.URL, &src.MatchFingerprint, &nextDueRaw, &refresh,
		&src.VideosTotal, &src.VideosSaved,
	); err != nil {
		return nil, err
	}
	finishSource(&src, allow, fetchedRaw, nextDueRaw, refresh)
	src.VideosMissing = src.VideosTotal - src.VideosSaved
	return &src, nil
}

func finishSource(src *Source, allow int64, fetchedRaw sql.NullString, nextDueRaw string, refresh int64) {
	src.Allow = allow != 0
	src.LastFetched = scanTimePtr(fetchedRaw)
	if parsed, err := parseTimeString(nextDueRaw); err == nil {
		src.NextDue = parsed
	}
	src.RefreshInterval = time.Duration(refresh) * time.Second
}
