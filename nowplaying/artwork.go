package nowplaying

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // artwork decoder
	_ "image/jpeg" // artwork decoder
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nfnt/resize"

	"github.com/treble-fm/castkit/log"
)

const (
	artworkMaxEntries = 16
	artworkMaxPixels  = 512
	artworkCacheDir   = "castkit/artwork"
)

// Artwork fetches owner images over HTTP and scales them down for
// lock-screen and remote-control display. Scaled copies are kept in
// memory and mirrored to the user cache directory so integrations that
// need a file path (MPRIS art urls) can serve them without refetching.
type Artwork struct {
	client *http.Client
	dir    string // disk mirror, "" when unavailable

	mu       sync.Mutex
	cache    map[string][]byte
	order    []string
	paths    map[string]string
	inflight map[string]bool
}

// NewArtwork creates an artwork fetcher.
func NewArtwork() *Artwork {
	dir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		dir = filepath.Join(userCache, artworkCacheDir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = ""
		}
	}
	return &Artwork{
		client:   &http.Client{Timeout: 10 * time.Second},
		dir:      dir,
		cache:    make(map[string][]byte),
		paths:    make(map[string]string),
		inflight: make(map[string]bool),
	}
}

// Fetch returns PNG data for the image at url, scaled to fit within
// the display bound while keeping its aspect ratio.
func (a *Artwork) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("artwork: empty url")
	}

	a.mu.Lock()
	if data, ok := a.cache[url]; ok {
		a.mu.Unlock()
		return data, nil
	}
	a.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("artwork: create request: %w", err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artwork: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork: fetch %s: status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("artwork: decode %s: %w", url, err)
	}

	scaled := resize.Thumbnail(artworkMaxPixels, artworkMaxPixels, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("artwork: encode: %w", err)
	}
	data := buf.Bytes()

	path := a.mirrorToDisk(url, data)

	a.mu.Lock()
	if len(a.order) >= artworkMaxEntries {
		oldest := a.order[0]
		a.order = a.order[1:]
		delete(a.cache, oldest)
	}
	a.cache[url] = data
	a.order = append(a.order, url)
	if path != "" {
		a.paths[url] = path
	}
	a.mu.Unlock()

	return data, nil
}

// CachedPath returns the on-disk path of the scaled copy of url, or ""
// when none has been fetched yet.
func (a *Artwork) CachedPath(url string) string {
	if url == "" {
		return ""
	}

	a.mu.Lock()
	path, ok := a.paths[url]
	a.mu.Unlock()
	if ok {
		return path
	}
	if a.dir == "" {
		return ""
	}

	// A previous process may have left the scaled copy behind.
	path = filepath.Join(a.dir, artworkKey(url)+".png")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	a.mu.Lock()
	a.paths[url] = path
	a.mu.Unlock()
	return path
}

// Prefetch fetches and scales the image in the background so a later
// CachedPath hit can serve it. Duplicate prefetches are coalesced.
func (a *Artwork) Prefetch(url string) {
	if url == "" {
		return
	}

	a.mu.Lock()
	if a.inflight[url] {
		a.mu.Unlock()
		return
	}
	if _, ok := a.paths[url]; ok {
		a.mu.Unlock()
		return
	}
	a.inflight[url] = true
	a.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if _, err := a.Fetch(ctx, url); err != nil {
			log.Debugf("nowplaying: prefetch artwork: %v", err)
		}

		a.mu.Lock()
		delete(a.inflight, url)
		a.mu.Unlock()
	}()
}

func (a *Artwork) mirrorToDisk(url string, data []byte) string {
	if a.dir == "" {
		return ""
	}
	path := filepath.Join(a.dir, artworkKey(url)+".png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Debugf("nowplaying: mirror artwork: %v", err)
		return ""
	}
	return path
}

func artworkKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])
}
