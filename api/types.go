package api

import "time"

// Post is the canonical server-side representation of a playable episode
// or live stream. Queue and store keep their own snapshots of it.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	OwnerName     string    `json:"owner_name"`
	OwnerImageURL string    `json:"owner_image_url"`
	MediaURL      string    `json:"media_url"`
	Duration      float64   `json:"duration"` // seconds, 0 for live streams
	HasVideo      bool      `json:"has_video"`
	IsStream      bool      `json:"is_stream"`
	PublishedAt   time.Time `json:"published_at"`
}

// Offset is a playback checkpoint for a post.
type Offset struct {
	PostID    string  `json:"post_id"`
	Offset    float64 `json:"offset"` // seconds
	Timestamp int64   `json:"timestamp"`
	Completed bool    `json:"completed"`
}

// TranscriptSegment is a single timed line of a transcript.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript holds the timed transcript of a post.
type Transcript struct {
	PostID   string              `json:"post_id"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
}
