package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/treble-fm/castkit/api"
	dbutil "github.com/treble-fm/castkit/internal/db"
)

// UpsertPost caches the post snapshot.
func (s *Store) UpsertPost(post api.Post) error {
	_, err := s.db.Exec(`
		INSERT INTO posts
			(id, title, owner_name, owner_image_url, media_url,
			 duration, has_video, is_stream, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			owner_name = excluded.owner_name,
			owner_image_url = excluded.owner_image_url,
			media_url = excluded.media_url,
			duration = excluded.duration,
			has_video = excluded.has_video,
			is_stream = excluded.is_stream,
			published_at = excluded.published_at
	`, post.ID, post.Title, post.OwnerName, post.OwnerImageURL, post.MediaURL,
		post.Duration, post.HasVideo, post.IsStream, post.PublishedAt.Unix())
	return err
}

// Post returns the cached post, or nil when it has never been cached.
func (s *Store) Post(id string) (*api.Post, error) {
	var post api.Post
	var ownerName, ownerImageURL sql.NullString
	var publishedAt sql.NullInt64

	row := s.db.QueryRow(`
		SELECT id, title, owner_name, owner_image_url, media_url,
		       duration, has_video, is_stream, published_at
		FROM posts
		WHERE id = ?
	`, id)

	err := row.Scan(&post.ID, &post.Title, &ownerName, &ownerImageURL,
		&post.MediaURL, &post.Duration, &post.HasVideo, &post.IsStream, &publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	post.OwnerName = dbutil.NullStringValue(ownerName)
	post.OwnerImageURL = dbutil.NullStringValue(ownerImageURL)
	if publishedAt.Valid {
		post.PublishedAt = time.Unix(publishedAt.Int64, 0)
	}
	return &post, nil
}
