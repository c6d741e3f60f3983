package playback

import (
	"context"

	"github.com/treble-fm/castkit/api"
)

// Client is the slice of the network API the orchestrator consumes.
// api.Client is the canonical implementation.
type Client interface {
	GetPost(ctx context.Context, id string) (*api.Post, error)
	GetPlaybackQueuePosts(ctx context.Context, postID string) ([]api.Post, error)
	GetTranscript(ctx context.Context, postID string) (*api.Transcript, error)
}

// PostCache receives fresh post snapshots for local caching.
// store.Store is the canonical implementation.
type PostCache interface {
	UpsertPost(post api.Post) error
}

// FileResolver locates downloaded copies of posts.
// files.Dir is the canonical implementation.
type FileResolver interface {
	FileURL(postID string) string
}

// TransportMode configures which OS transport controls are offered.
type TransportMode int

const (
	// TransportSingle enables skip±N and disables next/previous.
	TransportSingle TransportMode = iota
	// TransportTrackList enables all controls; used when the active
	// playlist has more than one entry.
	TransportTrackList
	// TransportLive disables seek, skip, and track controls.
	TransportLive
)

// String returns the transport mode name.
func (m TransportMode) String() string {
	switch m {
	case TransportSingle:
		return "single-track"
	case TransportTrackList:
		return "track-list"
	case TransportLive:
		return "live-stream"
	default:
		return "unknown"
	}
}

// TransportBridge is the OS remote-control surface.
// remote.Adapter is the canonical implementation.
type TransportBridge interface {
	SetMode(mode TransportMode)
	Deactivate()
}

// NowPlayingInfo is the metadata pushed to the system now-playing sink.
type NowPlayingInfo struct {
	Title        string
	Author       string
	Duration     float64 // seconds
	Elapsed      float64 // seconds
	ArtworkURL   string
	IsLiveStream bool
	Rate         float64
}

// NowPlayingSink receives now-playing metadata updates.
// nowplaying.Center is the canonical implementation.
type NowPlayingSink interface {
	SetNowPlaying(info NowPlayingInfo)
	Clear()
}
