// Package files resolves locally downloaded copies of posts so playback
// can start without the network.
package files

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Resolver maps a post id to a local media file, if one exists.
type Resolver interface {
	FileURL(postID string) string
}

// mediaExtensions are the extensions the download manager writes, in
// preference order.
var mediaExtensions = []string{".mp3", ".m4a", ".ogg", ".flac", ".wav", ".mp4", ".m4v", ".webm"}

// Dir resolves downloads from a flat directory of <postID>.<ext> files.
type Dir struct {
	root string
}

// NewDir creates a resolver over the given directory. An empty root uses
// the default xdg data location.
func NewDir(root string) *Dir {
	if root == "" {
		root = filepath.Join(xdg.DataHome, "castkit", "downloads")
	}
	return &Dir{root: root}
}

// FileURL returns the path of the downloaded copy of the post, or ""
// when none exists.
func (d *Dir) FileURL(postID string) string {
	for _, ext := range mediaExtensions {
		path := filepath.Join(d.root, postID+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Verify Dir implements Resolver at compile time.
var _ Resolver = (*Dir)(nil)

// None is a resolver that never finds a local file.
type None struct{}

func (None) FileURL(string) string { return "" }
