// Package store persists the playback queue, offsets, and the post
// cache in a local SQLite database.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "castkit"
	dbFileName = "castkit.db"
)

// Store wraps the SQLite database holding all durable playback state.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at the default xdg
// data path.
func Open() (*Store, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the database at an explicit path. Used by embedders
// that manage their own storage location, and by tests.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for embedders that colocate their own
// tables in the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}
