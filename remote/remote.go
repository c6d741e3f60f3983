//go:build linux

// Package remote bridges the orchestrator to the OS remote-control
// surface (MPRIS over D-Bus on Linux). The offered controls follow the
// transport mode the orchestrator configures per item.
package remote

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/treble-fm/castkit/nowplaying"
	"github.com/treble-fm/castkit/playback"
)

// Adapter exposes the orchestrator on the session bus.
type Adapter struct {
	orc    *playback.Orchestrator
	server *server.Server

	mu     sync.Mutex
	mode   playback.TransportMode
	active bool
}

// New creates and starts a remote-control adapter. The artwork fetcher
// is optional; with one attached, art urls point at locally scaled
// copies instead of the raw owner image.
func New(orc *playback.Orchestrator, center *nowplaying.Center, art *nowplaying.Artwork) (*Adapter, error) {
	a := &Adapter{orc: orc}

	root := &rootAdapter{}
	player := &playerAdapter{adapter: a, orc: orc, center: center, art: art}
	a.server = server.NewServer("castkit", root, player)

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// SetMode switches the offered transport controls.
func (a *Adapter) SetMode(mode playback.TransportMode) {
	a.mu.Lock()
	a.mode = mode
	a.active = true
	a.mu.Unlock()
}

// Deactivate withdraws the transport controls until the next SetMode.
func (a *Adapter) Deactivate() {
	a.mu.Lock()
	a.active = false
	a.mu.Unlock()
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

func (a *Adapter) currentMode() (playback.TransportMode, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode, a.active
}

// Verify Adapter implements the bridge contract at compile time.
var _ playback.TransportBridge = (*Adapter)(nil)

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }
func (r *rootAdapter) Quit() error  { return nil }

func (r *rootAdapter) CanQuit() (bool, error)      { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) {
	return "Castkit", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https", "file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp4", "video/mp4", "application/x-mpegURL"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	adapter *Adapter
	orc     *playback.Orchestrator
	center  *nowplaying.Center
	art     *nowplaying.Artwork
}

func (p *playerAdapter) Next() error {
	return p.orc.PlayNext(context.Background())
}

func (p *playerAdapter) Previous() error {
	return p.orc.PlayPrevious(context.Background())
}

func (p *playerAdapter) Pause() error {
	return p.orc.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.orc.Toggle()
}

func (p *playerAdapter) Stop() error {
	return p.orc.Stop()
}

func (p *playerAdapter) Play() error {
	return p.orc.Resume()
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	target := p.orc.Position() + time.Duration(offset)*time.Microsecond
	return p.orc.SeekTo(target, false)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.orc.SeekTo(time.Duration(position)*time.Microsecond, false)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.orc.Status().State {
	case playback.Playing:
		return types.PlaybackStatusPlaying, nil
	case playback.Paused, playback.Initializing:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return p.orc.CurrentSettings().Speed, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	p.orc.SetPlaybackSpeed(rate)
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	item := p.orc.CurrentItem()
	if item == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(item.PostID)),
		Length:  types.Microseconds(p.orc.TotalDuration().Microseconds()),
		Title:   item.Title,
		Artist:  []string{item.OwnerName},
	}
	if p.center != nil {
		if info, active := p.center.Current(); active && info.ArtworkURL != "" {
			meta.ArtUrl = p.artURL(info.ArtworkURL)
		}
	}
	return meta, nil
}

// artURL serves the locally scaled copy when one exists; otherwise it
// starts a background fetch and falls back to the remote url for now.
func (p *playerAdapter) artURL(remote string) string {
	if p.art == nil {
		return remote
	}
	if path := p.art.CachedPath(remote); path != "" {
		return "file://" + path
	}
	p.art.Prefetch(remote)
	return remote
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.orc.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return playback.Rates[0], nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return playback.Rates[len(playback.Rates)-1], nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	mode, active := p.adapter.currentMode()
	if !active || mode != playback.TransportTrackList {
		return false, nil
	}
	return p.orc.HasNext(), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	mode, active := p.adapter.currentMode()
	if !active || mode != playback.TransportTrackList {
		return false, nil
	}
	return true, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	_, active := p.adapter.currentMode()
	return active, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	_, active := p.adapter.currentMode()
	return active, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	mode, active := p.adapter.currentMode()
	return active && mode != playback.TransportLive, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(postID string) string {
	h := fnv.New64a()
	h.Write([]byte(postID))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
