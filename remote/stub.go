//go:build !linux

package remote

import (
	"github.com/treble-fm/castkit/nowplaying"
	"github.com/treble-fm/castkit/playback"
)

// Adapter is a no-op on platforms without an MPRIS session bus.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ *playback.Orchestrator, _ *nowplaying.Center, _ *nowplaying.Artwork) (*Adapter, error) {
	return &Adapter{}, nil
}

// SetMode is a no-op on non-Linux platforms.
func (a *Adapter) SetMode(_ playback.TransportMode) {}

// Deactivate is a no-op on non-Linux platforms.
func (a *Adapter) Deactivate() {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}

var _ playback.TransportBridge = (*Adapter)(nil)
