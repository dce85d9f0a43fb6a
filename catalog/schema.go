package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

const tracksSchema = `
CREATE TABLE IF NOT EXISTS tracks (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    artists     TEXT NOT NULL DEFAULT '[]',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    explicit    INTEGER NOT NULL DEFAULT 0,
    x           REAL NOT NULL,
    y           REAL NOT NULL,
    profile     BLOB
);
`

// EnsureSchema creates the tracks table if it does not already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, tracksSchema); err != nil {
		return fmt.Errorf("catalog: ensure schema: %w", err)
	}
	return nil
}
