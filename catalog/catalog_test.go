package catalog

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/tracknn/engine"
	"github.com/viant/tracknn/loader"
)

func newCatalog(t *testing.T) (*Catalog, *sql.DB) {
	t.Helper()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	c, err := New(context.Background(), db, nil)
	require.NoError(t, err)
	return c, db
}

func sampleRecords() []loader.Record {
	return []loader.Record{
		{ID: "a", Name: "Alpha", Artists: "['X', 'Y']", DurationMs: 1000, Explicit: 1,
			Valence: 0.4, Acousticness: 0.8, Danceability: 0.4, Energy: 0.4,
			Instrumentalness: 0.6, Liveness: 0.3, Speechiness: 0.3},
		{ID: "b", Name: "Beta", Artists: "Z", DurationMs: 2000,
			Valence: 0.4, Acousticness: 0.8, Danceability: 0.4, Energy: 0.4,
			Instrumentalness: 0.6, Liveness: 0.3, Speechiness: 0.2},
		{ID: "c", Name: "Gamma", DurationMs: 3000},
	}
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestCatalog_ImportLoad(t *testing.T) {
	c, _ := newCatalog(t)
	ctx := context.Background()

	n, err := c.Import(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	points, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, loader.Points(sampleRecords()), points)
}

func TestCatalog_ImportUpsertsLastWins(t *testing.T) {
	c, _ := newCatalog(t)
	ctx := context.Background()

	records := sampleRecords()
	renamed := records[0]
	renamed.Name = "Alpha v2"
	_, err := c.Import(ctx, append(records, renamed))
	require.NoError(t, err)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	points, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alpha v2", points[0].Name)
}

func TestCatalog_ImportIsAtomic(t *testing.T) {
	c, _ := newCatalog(t)
	ctx := context.Background()

	records := append(sampleRecords(), loader.Record{Name: "no id"})
	_, err := c.Import(ctx, records)
	require.ErrorIs(t, err, loader.ErrMalformedRow)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCatalog_Similar(t *testing.T) {
	c, _ := newCatalog(t)
	ctx := context.Background()
	_, err := c.Import(ctx, sampleRecords())
	require.NoError(t, err)

	matches, err := c.Similar(ctx, "a", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "b", matches[0].ID)
	assert.Equal(t, "Beta", matches[0].Name)
	assert.InDelta(t, 0.1, matches[0].Distance, 1e-6)
	assert.Equal(t, "c", matches[1].ID)

	matches, err = c.Similar(ctx, "a", 1)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = c.Similar(ctx, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = c.Similar(ctx, "missing", 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_Profile(t *testing.T) {
	c, _ := newCatalog(t)
	ctx := context.Background()
	_, err := c.Import(ctx, sampleRecords())
	require.NoError(t, err)

	p, err := c.Profile(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, sampleRecords()[0].Profile(), p)

	_, err = c.Profile(ctx, "zzz")
	require.ErrorIs(t, err, ErrNotFound)
}
