package store

import (
	"database/sql"
	"time"

	dbutil "github.com/treble-fm/castkit/internal/db"
	"github.com/treble-fm/castkit/queue"
)

// ReplaceQueue rewrites the persisted queue to match the given items.
// It implements queue.Persister.
func (s *Store) ReplaceQueue(items []queue.Item) error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_items`); err != nil {
			return err
		}
		for i, item := range items {
			_, err := tx.Exec(`
				INSERT INTO queue_items
					(position, post_id, reason, title, owner_name, owner_image_url,
					 media_url, duration, has_video, is_stream, published_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, i, item.ID, int(item.Reason), item.Post.Title, item.Post.OwnerName,
				item.Post.OwnerImageURL, item.Post.MediaURL, item.Post.Duration,
				item.Post.HasVideo, item.Post.IsStream, item.Post.PublishedAt.Unix())
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FetchQueue loads the persisted queue in order.
func (s *Store) FetchQueue() ([]queue.Item, error) {
	rows, err := s.db.Query(`
		SELECT post_id, reason, title, owner_name, owner_image_url,
		       media_url, duration, has_video, is_stream, published_at
		FROM queue_items
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []queue.Item
	for rows.Next() {
		var item queue.Item
		var reason int
		var ownerName, ownerImageURL sql.NullString
		var publishedAt sql.NullInt64

		err := rows.Scan(&item.ID, &reason, &item.Post.Title, &ownerName,
			&ownerImageURL, &item.Post.MediaURL, &item.Post.Duration,
			&item.Post.HasVideo, &item.Post.IsStream, &publishedAt)
		if err != nil {
			return nil, err
		}

		item.Post.ID = item.ID
		item.Reason = queue.Reason(reason)
		item.Post.OwnerName = dbutil.NullStringValue(ownerName)
		item.Post.OwnerImageURL = dbutil.NullStringValue(ownerImageURL)
		if publishedAt.Valid {
			item.Post.PublishedAt = time.Unix(publishedAt.Int64, 0)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Verify Store implements queue.Persister at compile time.
var _ queue.Persister = (*Store)(nil)
