package nowplaying

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/treble-fm/castkit/playback"
)

func TestCenterHoldsLatestSnapshot(t *testing.T) {
	c := NewCenter()

	if _, active := c.Current(); active {
		t.Fatal("fresh center reports active")
	}

	c.SetNowPlaying(playback.NowPlayingInfo{Title: "episode one", Rate: 1.5})
	info, active := c.Current()
	if !active || info.Title != "episode one" || info.Rate != 1.5 {
		t.Errorf("current = %+v active=%v", info, active)
	}

	c.Clear()
	if _, active := c.Current(); active {
		t.Error("center still active after Clear")
	}
}

func TestCenterNotifiesListeners(t *testing.T) {
	c := NewCenter()

	var got []bool
	c.OnChange(func(_ playback.NowPlayingInfo, active bool) {
		got = append(got, active)
	})

	c.SetNowPlaying(playback.NowPlayingInfo{Title: "x"})
	c.Clear()

	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("listener calls = %v, want [true false]", got)
	}
}

func TestArtworkFetchScalesAndCaches(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1024, 768))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	a := NewArtwork()
	data, err := a.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() > artworkMaxPixels || bounds.Dy() > artworkMaxPixels {
		t.Errorf("scaled size = %dx%d, want within %d", bounds.Dx(), bounds.Dy(), artworkMaxPixels)
	}

	if _, err := a.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", hits)
	}
}

func TestArtworkMirrorsScaledCopyToDisk(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	a := NewArtwork()
	a.dir = t.TempDir()

	if got := a.CachedPath(srv.URL); got != "" {
		t.Fatalf("CachedPath before fetch = %q, want empty", got)
	}

	if _, err := a.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	path := a.CachedPath(srv.URL)
	if path == "" {
		t.Fatal("CachedPath empty after fetch")
	}
	if _, err := png.Decode(mustOpen(t, path)); err != nil {
		t.Errorf("mirrored file is not a png: %v", err)
	}

	// A fresh fetcher over the same directory finds the copy on disk.
	b := NewArtwork()
	b.dir = a.dir
	if got := b.CachedPath(srv.URL); got != path {
		t.Errorf("CachedPath from disk = %q, want %q", got, path)
	}
}

func TestArtworkPrefetchPopulatesCache(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	a := NewArtwork()
	a.dir = t.TempDir()
	a.Prefetch(srv.URL)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a.CachedPath(srv.URL) != "" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("prefetch never produced a cached copy")
}

func mustOpen(t *testing.T, path string) *os.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestArtworkFetchRejectsBadResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewArtwork()
	if _, err := a.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("Fetch of 404 succeeded")
	}
	if _, err := a.Fetch(context.Background(), ""); err == nil {
		t.Error("Fetch of empty url succeeded")
	}
}
