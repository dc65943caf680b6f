package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/btraven00/tubelinks/internal/extractor"
)

const linksSchema = `CREATE TABLE IF NOT EXISTS links (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL,
	url      TEXT NOT NULL UNIQUE
)`

// writeSQLite stores records in a links table of the database at path.
// Records must already be deduplicated.
func writeSQLite(ctx context.Context, path string, records []extractor.Record) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlite: open db: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, linksSchema); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO links (position, name, url) VALUES (?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.ExecContext(ctx, i+1, string(record.Name), record.URL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert %s: %w", record.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	return nil
}
