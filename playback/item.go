package playback

import "time"

// Item describes the active playback unit. It is owned and mutated by
// the orchestrator (resume, seek, speed change) and destroyed when
// playback is closed. Not the same thing as the domain post.
type Item struct {
	PostID        string
	Title         string
	OwnerName     string
	OwnerImageURL string
	URL           string        // remote media url
	File          string        // local cached path, "" when none
	Position      time.Duration // start position / last known position
	Duration      time.Duration
	ShouldPlay    bool // desired auto-play intent
	IsStream      bool // live/radio rather than on-demand
}
