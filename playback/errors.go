package playback

import "errors"

var (
	// ErrNoConnection means playback could not start or continue because
	// the network is unreachable and no local copy exists.
	ErrNoConnection = errors.New("no network connection")

	// ErrPlaybackFailed is the generic engine decode/stream failure.
	ErrPlaybackFailed = errors.New("playback failed")

	// ErrStalled marks live-stream buffering that never resolved. Users
	// see it as a playback failure; diagnostics keep the distinction.
	ErrStalled = errors.New("stream stalled")

	// ErrNoActiveItem is returned by commands that need a loaded item.
	ErrNoActiveItem = errors.New("no active item")
)
