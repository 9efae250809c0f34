package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yuri-sevatz/youtube-sync/internal/identity"
)

const videoColumns = `e.id, e.extractor_key, e.extractor_data, e.allow, e.last_fetched`

// VideoByIdentity locates a video by its identity pair. Returns nil when no
// video matches.
func (s *Store) VideoByIdentity(ctx context.Context, id identity.Identity) (*Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+`
         FROM entity e JOIN video v ON v.entity_id = e.id
         WHERE e.extractor_key = ? AND e.extractor_data = ?`,
		id.Key, id.Data,
	)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("video by identity: %w", err)
	}
	return video, nil
}

// ListVideos returns every video ordered by id, with its source reference
// count attached.
func (s *Store) ListVideos(ctx context.Context) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+`, COUNT(c.source_id)
         FROM entity e
         JOIN video v ON v.entity_id = e.id
         LEFT JOIN content c ON c.video_id = v.entity_id
         GROUP BY e.id
         ORDER BY e.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideoWithSources(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// VideosForSource returns the videos linked to one source, ordered by id.
func (s *Store) VideosForSource(ctx context.Context, sourceID int64) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+videoColumns+`
         FROM entity e
         JOIN video v ON v.entity_id = e.id
         JOIN content c ON c.video_id = v.entity_id
         WHERE c.source_id = ?
         ORDER BY e.id`,
		sourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("videos for source: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// Reconcile links one provider-reported identity into the content graph. An
// existing video is linked to the source if not already linked (linking twice
// is a no-op); a new video is created and linked. All in one transaction.
func (s *Store) Reconcile(ctx context.Context, sourceID int64, id identity.Identity) (*Video, error) {
	var video Video
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+videoColumns+`
             FROM entity e JOIN video v ON v.entity_id = e.id
             WHERE e.extractor_key = ? AND e.extractor_data = ?`,
			id.Key, id.Data,
		)
		existing, err := scanVideo(row)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			res, err := tx.ExecContext(ctx,
				`INSERT INTO entity (kind, extractor_key, extractor_data, allow)
                 VALUES (?, ?, ?, 1)`,
				KindVideo, id.Key, id.Data,
			)
			if err != nil {
				return fmt.Errorf("insert video entity: %w", err)
			}
			entityID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO video (entity_id) VALUES (?)`, entityID,
			); err != nil {
				return fmt.Errorf("insert video: %w", err)
			}
			video = Video{ID: entityID, Identity: id, Allow: true}
		case err != nil:
			return fmt.Errorf("select video: %w", err)
		default:
			video = *existing
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO content (source_id, video_id) VALUES (?, ?)`,
			sourceID, video.ID,
		); err != nil {
			return fmt.Errorf("link video: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// MarkVideoFetched records a completed download.
func (s *Store) MarkVideoFetched(ctx context.Context, id int64, fetched time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE entity SET last_fetched = ? WHERE id = ? AND kind = ?`,
		formatTime(fetched), id, KindVideo,
	); err != nil {
		return fmt.Errorf("mark video fetched: %w", err)
	}
	return nil
}

// SourceCountForVideo returns the video's reference count in the content
// graph.
func (s *Store) SourceCountForVideo(ctx context.Context, videoID int64) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM content WHERE video_id = ?`, videoID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("source count: %w", err)
	}
	return count, nil
}

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		video      Video
		allow      int64
		fetchedRaw sql.NullString
	)
	if err := scanner.Scan(
		&video.ID, &video.Identity.Key, &video.Identity.Data, &allow, &fetchedRaw,
	); err != nil {
		return nil, err
	}
	video.Allow = allow != 0
	video.LastFetched = scanTimePtr(fetchedRaw)
	return &video, nil
}

func scanVideoWithSources(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		video      Video
		allow      int64
		fetchedRaw sql.NullString
	)
	if err := scanner.Scan(
		&video.ID, &video.Identity.Key, &video.Identity.Data, &allow, &fetchedRaw, &video.Sources,
	); err != nil {
		return nil, err
	}
	video.Allow = allow != 0
	video.LastFetched = scanTimePtr(fetchedRaw)
	return &video, nil
}
