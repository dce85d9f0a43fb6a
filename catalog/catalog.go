package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/viant/tracknn/loader"
	"github.com/viant/tracknn/track"
)

// ErrNotFound is returned when a track id is not in the catalog.
var ErrNotFound = errors.New("catalog: track not found")

// Match is a profile-similarity result.
type Match struct {
	ID       string
	Name     string
	Distance float64
}

// Catalog is a SQLite-backed track store. The database must have been
// opened through engine.Open so the feature functions are available.
type Catalog struct {
	db     *sql.DB
	logger *zap.Logger
}

// New returns a catalog over db, creating the schema when needed.
func New(ctx context.Context, db *sql.DB, logger *zap.Logger) (*Catalog, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog: db is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Catalog{db: db, logger: logger}, nil
}

// Import upserts records in one transaction; a later record with the same
// id replaces an earlier one. Nothing is written when any record fails.
func (c *Catalog) Import(ctx context.Context, records []loader.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("catalog: begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO tracks(id, name, artists, duration_ms, explicit, x, y, profile)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    artists = excluded.artists,
    duration_ms = excluded.duration_ms,
    explicit = excluded.explicit,
    x = excluded.x,
    y = excluded.y,
    profile = excluded.profile`)
	if err != nil {
		return 0, fmt.Errorf("catalog: prepare import: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("catalog: record %d: %w: %v", i, loader.ErrMalformedRow, err)
		}
		p := rec.Point()
		artists, err := json.Marshal(nonNil(p.Artists))
		if err != nil {
			return 0, fmt.Errorf("catalog: record %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, string(artists), int64(p.DurationMs), p.Explicit,
			p.X, p.Y, track.EncodeProfile(rec.Profile())); err != nil {
			return 0, fmt.Errorf("catalog: insert %s: %w", rec.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("catalog: commit import: %w", err)
	}
	c.logger.Info("catalog import", zap.Int("records", len(records)))
	return len(records), nil
}

// Load returns every stored track as a point, in insertion order. It
// satisfies loader.Source.
func (c *Catalog) Load(ctx context.Context) ([]track.Point, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, artists, duration_ms, explicit, x, y FROM tracks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	defer rows.Close()

	var points []track.Point
	for rows.Next() {
		var (
			p       track.Point
			artists string
			dur     int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &artists, &dur, &p.Explicit, &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(artists), &p.Artists); err != nil {
			return nil, fmt.Errorf("catalog: track %s artists: %w", p.ID, err)
		}
		if len(p.Artists) == 0 {
			p.Artists = nil
		}
		p.DurationMs = uint32(dur)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	return points, nil
}

// Count returns the number of stored tracks.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

// Profile returns the raw feature profile of a track.
func (c *Catalog) Profile(ctx context.Context, id string) (track.Profile, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT profile FROM tracks WHERE id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return track.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return track.Profile{}, fmt.Errorf("catalog: profile %s: %w", id, err)
	}
	return track.DecodeProfile(blob)
}

// Similar returns up to limit tracks whose raw profiles are closest to the
// profile of id, nearest first, ties broken by id. The track itself is
// excluded.
func (c *Catalog) Similar(ctx context.Context, id string, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, nil
	}
	if _, err := c.Profile(ctx, id); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, `
SELECT t.id, t.name, feature_l2(t.profile, q.profile) AS distance
FROM tracks t, tracks q
WHERE q.id = ? AND t.id <> q.id AND t.profile IS NOT NULL
ORDER BY distance, t.id
LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: similar %s: %w", id, err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Name, &m.Distance); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: similar %s: %w", id, err)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ loader.Source = (*Catalog)(nil)
