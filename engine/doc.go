// Package engine opens SQLite databases through the modernc.org/sqlite
// driver and registers the scalar functions the track catalog relies on.
package engine
