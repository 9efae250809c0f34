package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetConfig reads a singleton config row. The second return is false when the
// row does not exist.
func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE id = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read config %s: %w", key, err)
	}
	return value, true, nil
}

// SetConfig upserts a singleton config row.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO config (id, value) VALUES (?, ?)
         ON CONFLICT (id) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		return fmt.Errorf("write config %s: %w", key, err)
	}
	return nil
}
