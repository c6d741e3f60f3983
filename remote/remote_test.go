//go:build linux

package remote

import (
	"testing"

	"github.com/treble-fm/castkit/playback"
)

func newTestPlayer(t *testing.T) (*Adapter, *playerAdapter) {
	t.Helper()
	orc := playback.New(playback.Deps{}, playback.Options{})
	t.Cleanup(orc.Shutdown)
	a := &Adapter{orc: orc}
	return a, &playerAdapter{adapter: a, orc: orc}
}

func TestControlsWithdrawnWhileInactive(t *testing.T) {
	_, p := newTestPlayer(t)

	if ok, _ := p.CanPlay(); ok {
		t.Error("play offered before any session")
	}
	if ok, _ := p.CanSeek(); ok {
		t.Error("seek offered before any session")
	}
}

func TestTransportModeGatesControls(t *testing.T) {
	a, p := newTestPlayer(t)

	a.SetMode(playback.TransportLive)
	if ok, _ := p.CanSeek(); ok {
		t.Error("seek offered for a live stream")
	}
	if ok, _ := p.CanGoNext(); ok {
		t.Error("next offered for a live stream")
	}
	if ok, _ := p.CanPause(); !ok {
		t.Error("pause withheld for a live stream")
	}

	a.SetMode(playback.TransportSingle)
	if ok, _ := p.CanSeek(); !ok {
		t.Error("seek withheld for a single track")
	}
	if ok, _ := p.CanGoPrevious(); ok {
		t.Error("previous offered for a single track")
	}

	a.SetMode(playback.TransportTrackList)
	if ok, _ := p.CanGoPrevious(); !ok {
		t.Error("previous withheld for a track list")
	}

	a.Deactivate()
	if ok, _ := p.CanPause(); ok {
		t.Error("pause offered after Deactivate")
	}
}

func TestMetadataEmptyWithoutItem(t *testing.T) {
	_, p := newTestPlayer(t)

	meta, err := p.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Title != "" {
		t.Errorf("metadata title = %q, want empty", meta.Title)
	}
}

func TestArtURLFallsBackToRemote(t *testing.T) {
	_, p := newTestPlayer(t)

	url := "https://cdn.example.com/owner.jpg"
	if got := p.artURL(url); got != url {
		t.Errorf("artURL without fetcher = %q, want the remote url", got)
	}
}
