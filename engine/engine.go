package engine

import (
	"database/sql"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// Pass ":memory:" for an in-memory database. Functions registered with
// RegisterFunctions are visible on every connection opened afterwards.
func Open(dsn string) (*sql.DB, error) {
	if err := RegisterFunctions(); err != nil {
		return nil, err
	}
	return sql.Open("sqlite", dsn)
}
