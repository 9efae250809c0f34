package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
)

//go:embed schema.sql
var schemaSQL string

// Schema generations recorded in the config table. Generation 1 is the
// pre-URL layout (no canonical URL or match fingerprint on sources);
// generation 2 is current.
const (
	schemaGeneration = 2

	configVersionKey  = "version"
	configProviderKey = "ytdl_version"
)

func (s *Store) initSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// A fresh database starts at the current generation. Existing databases
	// keep their recorded generation; Migrate decides what to do with it.
	var existing int
	row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM config WHERE id = ?`, configVersionKey)
	if err := row.Scan(&existing); err != nil {
		return fmt.Errorf("check schema generation: %w", err)
	}
	if existing == 0 {
		var entities int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM entity`)
		if err := row.Scan(&entities); err != nil {
			return fmt.Errorf("count entities: %w", err)
		}
		generation := schemaGeneration
		if entities > 0 {
			// Data without a generation row predates generation tracking.
			generation = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config (id, value) VALUES (?, ?)`,
			configVersionKey, strconv.Itoa(generation),
		); err != nil {
			return fmt.Errorf("record schema generation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
