package store

import (
	"database/sql"
	"errors"

	"github.com/treble-fm/castkit/api"
)

// UpsertOffset inserts or updates the playback offset for a post.
func (s *Store) UpsertOffset(offset api.Offset) error {
	_, err := s.db.Exec(`
		INSERT INTO offsets (post_id, offset, timestamp, completed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(post_id) DO UPDATE SET
			offset = excluded.offset,
			timestamp = excluded.timestamp,
			completed = excluded.completed
	`, offset.PostID, offset.Offset, offset.Timestamp, offset.Completed)
	return err
}

// Offset returns the cached offset for a post, or nil when none is
// recorded.
func (s *Store) Offset(postID string) (*api.Offset, error) {
	var offset api.Offset
	row := s.db.QueryRow(`
		SELECT post_id, offset, timestamp, completed
		FROM offsets
		WHERE post_id = ?
	`, postID)

	err := row.Scan(&offset.PostID, &offset.Offset, &offset.Timestamp, &offset.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offset, nil
}
