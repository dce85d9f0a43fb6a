// Package catalog stores tracks in SQLite. A catalog keeps each track's
// map position, metadata and raw feature profile, serves the points as an
// engine build source, and answers profile-similarity queries in SQL.
package catalog
