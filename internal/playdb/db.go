// Package playdb persists detected plays and per-player aggregates to
// SQLite. Schema is managed exclusively by migrations; opening a database
// never creates tables.
package playdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL connection to a play database.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the SQLite database at path. Run MigrateUp before
// using the store methods on a fresh database.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// modernc sqlite serialises writes itself, but a busy timeout avoids
	// SQLITE_BUSY from concurrent readers during VACUUM backups.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}

	return &DB{db}, nil
}
