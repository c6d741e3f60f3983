package store

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS queue_items (
			position INTEGER NOT NULL,
			post_id TEXT NOT NULL UNIQUE,
			reason INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			owner_name TEXT,
			owner_image_url TEXT,
			media_url TEXT NOT NULL,
			duration REAL NOT NULL DEFAULT 0,
			has_video INTEGER NOT NULL DEFAULT 0,
			is_stream INTEGER NOT NULL DEFAULT 0,
			published_at INTEGER,
			UNIQUE(position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_items_position ON queue_items(position);

		CREATE TABLE IF NOT EXISTS offsets (
			post_id TEXT PRIMARY KEY,
			offset REAL NOT NULL DEFAULT 0,
			timestamp INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			owner_name TEXT,
			owner_image_url TEXT,
			media_url TEXT NOT NULL,
			duration REAL NOT NULL DEFAULT 0,
			has_video INTEGER NOT NULL DEFAULT 0,
			is_stream INTEGER NOT NULL DEFAULT 0,
			published_at INTEGER
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}
