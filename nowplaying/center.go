// Package nowplaying holds the system now-playing surface: the latest
// playback metadata and the artwork pipeline that feeds it.
package nowplaying

import (
	"sync"

	"github.com/treble-fm/castkit/playback"
)

// Center is the process-wide now-playing registry. The orchestrator
// pushes metadata into it; OS integrations and UIs read the latest
// snapshot or subscribe to changes.
type Center struct {
	mu       sync.RWMutex
	info     playback.NowPlayingInfo
	active   bool
	onChange []func(playback.NowPlayingInfo, bool)
}

// NewCenter creates an empty center.
func NewCenter() *Center {
	return &Center{}
}

// SetNowPlaying replaces the current metadata snapshot.
func (c *Center) SetNowPlaying(info playback.NowPlayingInfo) {
	c.mu.Lock()
	c.info = info
	c.active = true
	listeners := append([]func(playback.NowPlayingInfo, bool){}, c.onChange...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(info, true)
	}
}

// Clear empties the now-playing surface.
func (c *Center) Clear() {
	c.mu.Lock()
	c.info = playback.NowPlayingInfo{}
	c.active = false
	listeners := append([]func(playback.NowPlayingInfo, bool){}, c.onChange...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(playback.NowPlayingInfo{}, false)
	}
}

// Current returns the latest snapshot and whether anything is playing.
func (c *Center) Current() (playback.NowPlayingInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info, c.active
}

// OnChange registers a callback invoked after every update. Callbacks
// run on the updater's goroutine and must not block.
func (c *Center) OnChange(fn func(info playback.NowPlayingInfo, active bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Verify Center implements the sink contract at compile time.
var _ playback.NowPlayingSink = (*Center)(nil)
